package app

import (
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/repos"
)

type Repos struct {
	User         repos.UserRepo
	UserToken    repos.UserTokenRepo
	Store        repos.StoreRepo
	StoreGrant   repos.StoreGrantRepo
	Product      repos.ProductRepo
	Cart         repos.CartRepo
	Order        repos.OrderRepo
	Offer        repos.OfferRepo
	Contract     repos.ContractRepo
	Discount     repos.DiscountRepo
	PurchaseRule repos.PurchaseRuleRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:         repos.NewUserRepo(db, log),
		UserToken:    repos.NewUserTokenRepo(db, log),
		Store:        repos.NewStoreRepo(db, log),
		StoreGrant:   repos.NewStoreGrantRepo(db, log),
		Product:      repos.NewProductRepo(db, log),
		Cart:         repos.NewCartRepo(db, log),
		Order:        repos.NewOrderRepo(db, log),
		Offer:        repos.NewOfferRepo(db, log),
		Contract:     repos.NewContractRepo(db, log),
		Discount:     repos.NewDiscountRepo(db, log),
		PurchaseRule: repos.NewPurchaseRuleRepo(db, log),
	}
}
