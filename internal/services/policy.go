package services

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/storemesh/marketplace-backend/internal/domain/pricing"
	"github.com/storemesh/marketplace-backend/internal/platform/envutil"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
)

// PolicyService loads the marketplace-wide default purchase policy applied
// to every newly opened store. Today that policy restricts alcohol: a
// minimum buyer age and a nightly sales window.
type PolicyService interface {
	DefaultRules() []pricing.PurchaseRule
}

type categoryPolicy struct {
	Category     string `yaml:"category"`
	MinAge       int    `yaml:"min_age"`
	NoSaleFrom   int    `yaml:"no_sale_from_hour"`
	NoSaleTo     int    `yaml:"no_sale_to_hour"`
	TimeWindowed bool   `yaml:"time_windowed"`
}

type policyFile struct {
	Categories []categoryPolicy `yaml:"categories"`
}

type policyService struct {
	log   *logger.Logger
	rules []pricing.PurchaseRule
}

func NewPolicyService(log *logger.Logger) (PolicyService, error) {
	serviceLog := log.With("service", "PolicyService")
	path := envutil.String("POLICY_FILE", "configs/policy.yaml")
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			serviceLog.Warn("policy file missing, no default purchase rules", "path", path)
			return &policyService{log: serviceLog}, nil
		}
		return nil, fmt.Errorf("failed to read policy file %s: %w", path, err)
	}
	var file policyFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse policy file %s: %w", path, err)
	}

	var rules []pricing.PurchaseRule
	for _, cp := range file.Categories {
		if cp.Category == "" {
			return nil, fmt.Errorf("policy file %s: category name required", path)
		}
		category := pricing.Category(cp.Category)
		if cp.MinAge > 0 {
			rules = append(rules, pricing.NewAndRule(pricing.AgeRestricted(category, cp.MinAge)))
		}
		if cp.TimeWindowed {
			rules = append(rules, pricing.NewAndRule(pricing.TimeRestricted(category, cp.NoSaleFrom, cp.NoSaleTo)))
		}
	}
	serviceLog.Info("loaded default purchase policy", "path", path, "rules", len(rules))
	return &policyService{log: serviceLog, rules: rules}, nil
}

func (ps *policyService) DefaultRules() []pricing.PurchaseRule {
	out := make([]pricing.PurchaseRule, len(ps.rules))
	copy(out, ps.rules)
	return out
}
