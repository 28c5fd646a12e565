package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
	"github.com/storemesh/marketplace-backend/internal/domain/store"
	"github.com/storemesh/marketplace-backend/internal/platform/logger"
	"github.com/storemesh/marketplace-backend/internal/realtime"
	"github.com/storemesh/marketplace-backend/internal/repos"
)

// ContractService drives the owner-appointment workflow on the store
// aggregate. A finalized contract changes grants and every live ledger, so
// finalization re-persists grants, offers and contracts together.
type ContractService interface {
	CreateContract(ctx context.Context, assignerID, storeID, candidateID uuid.UUID, terms string) (store.ContractView, error)
	UpdateTerms(ctx context.Context, actorID, storeID uuid.UUID, contractNo uint64, terms string) (store.ContractView, error)
	ApproveContract(ctx context.Context, approverID, storeID uuid.UUID, contractNo uint64) (store.ContractView, error)
	RejectContract(ctx context.Context, actorID, storeID uuid.UUID, contractNo uint64) error
	ListContracts(ctx context.Context, actorID, storeID uuid.UUID) ([]store.ContractView, error)
}

type contractService struct {
	db        *gorm.DB
	log       *logger.Logger
	registry  StoreRegistry
	userRepo  repos.UserRepo
	grantRepo repos.StoreGrantRepo
	persister *proposalPersister
	notifier  Notifier
}

func NewContractService(
	db *gorm.DB,
	log *logger.Logger,
	registry StoreRegistry,
	userRepo repos.UserRepo,
	grantRepo repos.StoreGrantRepo,
	offerRepo repos.OfferRepo,
	contractRepo repos.ContractRepo,
	notifier Notifier,
) ContractService {
	return &contractService{
		db:        db,
		log:       log.With("service", "ContractService"),
		registry:  registry,
		userRepo:  userRepo,
		grantRepo: grantRepo,
		persister: &proposalPersister{offerRepo: offerRepo, contractRepo: contractRepo},
		notifier:  notifier,
	}
}

const (
	opContractCreate = "contract.CreateContract"
	opContractReject = "contract.RejectContract"
	opContractsList  = "contract.ListContracts"
)

func (cs *contractService) CreateContract(ctx context.Context, assignerID, storeID, candidateID uuid.UUID, terms string) (store.ContractView, error) {
	if _, err := cs.userRepo.GetByID(ctx, nil, candidateID); err != nil {
		return store.ContractView{}, domainerr.New(domainerr.CodeNotFound, opContractCreate, "candidate not found")
	}
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return store.ContractView{}, err
	}
	view, err := agg.CreateContract(assignerID, candidateID, terms)
	if err != nil {
		return store.ContractView{}, err
	}
	if err := cs.syncContracts(ctx, agg); err != nil {
		return store.ContractView{}, err
	}
	cs.notifier.ContractChanged(storeID, realtime.EventContractCreated, view)
	return view, nil
}

func (cs *contractService) UpdateTerms(ctx context.Context, actorID, storeID uuid.UUID, contractNo uint64, terms string) (store.ContractView, error) {
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return store.ContractView{}, err
	}
	view, err := agg.UpdateContractTerms(actorID, contractNo, terms)
	if err != nil {
		return store.ContractView{}, err
	}
	if err := cs.syncContracts(ctx, agg); err != nil {
		return store.ContractView{}, err
	}
	cs.notifier.ContractChanged(storeID, realtime.EventContractUpdated, view)
	return view, nil
}

// ApproveContract records consent. On unanimity the candidate becomes an
// owner, so grants and every proposal ledger are re-persisted in one
// transaction.
func (cs *contractService) ApproveContract(ctx context.Context, approverID, storeID uuid.UUID, contractNo uint64) (store.ContractView, error) {
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return store.ContractView{}, err
	}
	view, err := agg.ApproveContract(approverID, contractNo)
	if err != nil {
		return store.ContractView{}, err
	}
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if view.Finalized {
			if err := syncGrants(ctx, tx, cs.grantRepo, agg); err != nil {
				return err
			}
			if err := cs.persister.syncOffers(ctx, tx, agg); err != nil {
				return err
			}
		}
		return cs.persister.syncContracts(ctx, tx, agg)
	})
	if err != nil {
		return store.ContractView{}, err
	}
	if view.Finalized {
		cs.notifier.ContractChanged(storeID, realtime.EventContractFinalized, view)
		cs.log.Info("contract finalized", "store_id", storeID, "contract_no", contractNo, "candidate_id", view.CandidateID)
	}
	return view, nil
}

// RejectContract discards the proposal. The assigner may withdraw their own
// contract; anyone else needs the manage-contracts capability.
func (cs *contractService) RejectContract(ctx context.Context, actorID, storeID uuid.UUID, contractNo uint64) error {
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return err
	}
	view, err := agg.Contract(contractNo)
	if err != nil {
		return err
	}
	if view.AssignedBy != actorID && !agg.Capabilities(actorID).Has(permission.CapManageContracts) {
		return domainerr.New(domainerr.CodeForbidden, opContractReject, "actor may not reject this contract")
	}
	if err := agg.RejectContract(contractNo); err != nil {
		return err
	}
	if err := cs.syncContracts(ctx, agg); err != nil {
		return err
	}
	cs.notifier.ContractChanged(storeID, realtime.EventContractRejected, view)
	return nil
}

func (cs *contractService) ListContracts(ctx context.Context, actorID, storeID uuid.UUID) ([]store.ContractView, error) {
	agg, err := cs.registry.Get(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !agg.Capabilities(actorID).Has(permission.CapManageContracts) {
		return nil, domainerr.New(domainerr.CodeForbidden, opContractsList, "actor lacks manage-contracts capability")
	}
	return agg.Contracts(), nil
}

func (cs *contractService) syncContracts(ctx context.Context, agg *store.Store) error {
	return cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cs.persister.syncContracts(ctx, tx, agg)
	})
}
