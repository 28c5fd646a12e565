package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/realtime"
	"github.com/storemesh/marketplace-backend/internal/repos"
	"github.com/storemesh/marketplace-backend/internal/types"
)

// RoleView is one member's standing in a store as reported to clients.
type RoleView struct {
	UserID       uuid.UUID `json:"user_id"`
	GrantedBy    uuid.UUID `json:"granted_by"`
	Role         string    `json:"role"`
	Capabilities []string  `json:"capabilities"`
}

type StoreService interface {
	OpenStore(ctx context.Context, founderID uuid.UUID, name, description string) (*types.Store, error)
	CloseStore(ctx context.Context, actorID, storeID uuid.UUID) error
	GetStore(ctx context.Context, storeID uuid.UUID) (*types.Store, error)
	ListStores(ctx context.Context) ([]*types.Store, error)
	GrantRole(ctx context.Context, storeID, grantorID, userID uuid.UUID, role permission.Role) error
	RevokeRole(ctx context.Context, storeID, revokerID, userID uuid.UUID) error
	Roles(ctx context.Context, storeID, actorID uuid.UUID) ([]RoleView, error)
}

type storeService struct {
	db        *gorm.DB
	log       *logger.Logger
	registry  StoreRegistry
	storeRepo repos.StoreRepo
	grantRepo repos.StoreGrantRepo
	userRepo  repos.UserRepo
	ruleRepo  repos.PurchaseRuleRepo
	policy    PolicyService
	persister *proposalPersister
	notifier  Notifier
}

func NewStoreService(
	db *gorm.DB,
	log *logger.Logger,
	registry StoreRegistry,
	storeRepo repos.StoreRepo,
	grantRepo repos.StoreGrantRepo,
	userRepo repos.UserRepo,
	ruleRepo repos.PurchaseRuleRepo,
	offerRepo repos.OfferRepo,
	contractRepo repos.ContractRepo,
	policy PolicyService,
	notifier Notifier,
) StoreService {
	return &storeService{
		db:        db,
		log:       log.With("service", "StoreService"),
		registry:  registry,
		storeRepo: storeRepo,
		grantRepo: grantRepo,
		userRepo:  userRepo,
		ruleRepo:  ruleRepo,
		policy:    policy,
		persister: &proposalPersister{offerRepo: offerRepo, contractRepo: contractRepo},
		notifier:  notifier,
	}
}

const (
	opOpenStore  = "store.OpenStore"
	opCloseStore = "store.CloseStore"
	opViewRoles  = "store.Roles"
)

// OpenStore creates the store record, seeds the founder grant and installs
// the marketplace default purchase policy.
func (ss *storeService) OpenStore(ctx context.Context, founderID uuid.UUID, name, description string) (*types.Store, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerr.New(domainerr.CodeValidation, opOpenStore, "store name required")
	}
	if _, err := ss.userRepo.GetByID(ctx, nil, founderID); err != nil {
		return nil, domainerr.New(domainerr.CodeNotFound, opOpenStore, "founder not found")
	}

	record := &types.Store{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		FounderID:   founderID,
		Active:      true,
	}
	agg := store.New(record.ID, founderID)

	defaults := ss.policy.DefaultRules()
	err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := ss.storeRepo.Create(ctx, tx, record); err != nil {
			return fmt.Errorf("failed to create store: %w", err)
		}
		if err := syncGrants(ctx, tx, ss.grantRepo, agg); err != nil {
			return fmt.Errorf("failed to persist founder grant: %w", err)
		}
		for _, rule := range defaults {
			ruleNo, err := agg.AddPurchaseRule(founderID, rule)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(rule)
			if err != nil {
				return err
			}
			if _, err := ss.ruleRepo.Create(ctx, tx, &types.PurchaseRuleRecord{
				StoreID: record.ID,
				RuleNo:  ruleNo,
				Rule:    raw,
			}); err != nil {
				return fmt.Errorf("failed to persist default rule: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	ss.registry.Register(agg)
	ss.log.Info("store opened", "store_id", record.ID, "founder_id", founderID)
	return record, nil
}

// CloseStore deactivates the store. Only the founder may close it.
func (ss *storeService) CloseStore(ctx context.Context, actorID, storeID uuid.UUID) error {
	record, err := ss.storeRepo.GetByID(ctx, nil, storeID)
	if err != nil {
		return domainerr.New(domainerr.CodeNotFound, opCloseStore, "store not found")
	}
	if record.FounderID != actorID {
		return domainerr.New(domainerr.CodeForbidden, opCloseStore, "only the founder can close the store")
	}
	record.Active = false
	if err := ss.storeRepo.Update(ctx, nil, record); err != nil {
		return fmt.Errorf("failed to deactivate store: %w", err)
	}
	ss.registry.Evict(storeID)
	ss.log.Info("store closed", "store_id", storeID)
	return nil
}

func (ss *storeService) GetStore(ctx context.Context, storeID uuid.UUID) (*types.Store, error) {
	return ss.storeRepo.GetByID(ctx, nil, storeID)
}

func (ss *storeService) ListStores(ctx context.Context) ([]*types.Store, error) {
	return ss.storeRepo.ListActive(ctx, nil)
}

// GrantRole runs the aggregate mutation, then mirrors grants and any ledger
// membership changes into the record tables.
func (ss *storeService) GrantRole(ctx context.Context, storeID, grantorID, userID uuid.UUID, role permission.Role) error {
	if _, err := ss.userRepo.GetByID(ctx, nil, userID); err != nil {
		return domainerr.New(domainerr.CodeNotFound, "store.GrantRole", "user not found")
	}
	agg, err := ss.registry.Get(ctx, storeID)
	if err != nil {
		return err
	}
	if err := agg.GrantRole(grantorID, userID, role); err != nil {
		return err
	}
	if err := ss.persistMembershipChange(ctx, agg); err != nil {
		return err
	}
	ss.notifier.RoleChanged(storeID, userID, realtime.EventRoleGranted)
	ss.log.Info("role granted", "store_id", storeID, "user_id", userID, "role", role)
	return nil
}

// RevokeRole removes the role and its transitive appointees, then mirrors
// the surviving grants and ledgers.
func (ss *storeService) RevokeRole(ctx context.Context, storeID, revokerID, userID uuid.UUID) error {
	agg, err := ss.registry.Get(ctx, storeID)
	if err != nil {
		return err
	}
	if err := agg.RevokeRole(revokerID, userID); err != nil {
		return err
	}
	if err := ss.persistMembershipChange(ctx, agg); err != nil {
		return err
	}
	ss.notifier.RoleChanged(storeID, userID, realtime.EventRoleRevoked)
	ss.log.Info("role revoked", "store_id", storeID, "user_id", userID)
	return nil
}

func (ss *storeService) persistMembershipChange(ctx context.Context, agg *store.Store) error {
	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := syncGrants(ctx, tx, ss.grantRepo, agg); err != nil {
			return err
		}
		if err := ss.persister.syncOffers(ctx, tx, agg); err != nil {
			return err
		}
		return ss.persister.syncContracts(ctx, tx, agg)
	})
}

// Roles lists current members. Requires the view-roles capability.
func (ss *storeService) Roles(ctx context.Context, storeID, actorID uuid.UUID) ([]RoleView, error) {
	agg, err := ss.registry.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !agg.Capabilities(actorID).Has(permission.CapViewRoles) {
		return nil, domainerr.New(domainerr.CodeForbidden, opViewRoles, "actor lacks view-roles capability")
	}
	grants := agg.Grants()
	out := make([]RoleView, 0, len(grants))
	for _, g := range grants {
		out = append(out, RoleView{
			UserID:       g.UserID,
			GrantedBy:    g.GrantedBy,
			Role:         string(g.Role),
			Capabilities: strings.Split(g.Capabilities.String(), "|"),
		})
	}
	return out, nil
}
