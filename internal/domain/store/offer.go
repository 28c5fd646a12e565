package store

import (
	"time"

	"github.com/google/uuid"

	"github.com/storemesh/marketplace-backend/internal/domain/consent"
	"github.com/storemesh/marketplace-backend/internal/domain/domainerr"
	"github.com/storemesh/marketplace-backend/internal/domain/permission"
)

// OfferStatus tracks where a price offer stands in the consent workflow.
type OfferStatus string

const (
	// OfferPending means at least one empowered party has not consented.
	OfferPending OfferStatus = "pending"
	// OfferApproved means consent is unanimous; the buyer may pay. Approval
	// does not remove the offer and is not itself a purchase.
	OfferApproved OfferStatus = "approved"
)

// Offer is a buyer's proposal to purchase a product at a negotiated price
// and quantity, gated by unanimous consent of every manage-offers holder.
type Offer struct {
	ID        uint64
	BuyerID   uuid.UUID
	ProductID uuid.UUID
	Price     float64
	Quantity  int
	CreatedAt time.Time
	Status    OfferStatus

	ledger *consent.Ledger
}

// OfferView is a copy-safe snapshot of an offer for callers outside the
// store lock.
type OfferView struct {
	ID        uint64      `json:"id"`
	BuyerID   uuid.UUID   `json:"buyer_id"`
	ProductID uuid.UUID   `json:"product_id"`
	Price     float64     `json:"price"`
	Quantity  int         `json:"quantity"`
	CreatedAt time.Time   `json:"created_at"`
	Status    OfferStatus `json:"status"`
	Approvers []uuid.UUID `json:"approvers"`
	Pending   []uuid.UUID `json:"pending_approvers"`
	Satisfied bool        `json:"satisfied"`
}

func (o *Offer) view() OfferView {
	return OfferView{
		ID:        o.ID,
		BuyerID:   o.BuyerID,
		ProductID: o.ProductID,
		Price:     o.Price,
		Quantity:  o.Quantity,
		CreatedAt: o.CreatedAt,
		Status:    o.Status,
		Approvers: o.ledger.Approvers(),
		Pending:   o.ledger.Pending(),
		Satisfied: o.ledger.Satisfied(),
	}
}

const (
	opCreateOffer  = "store.CreateOffer"
	opCounterOffer = "store.CounterOffer"
	opApproveOffer = "store.ApproveOffer"
	opOffer        = "store.Offer"
)

// CreateOffer opens a price negotiation, seeding the consent ledger from the
// current manage-offers holders. Fails when no holder exists: nobody could
// ever approve.
func (s *Store) CreateOffer(buyerID, productID uuid.UUID, price float64, quantity int, now time.Time) (OfferView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := validateOfferTerms(opCreateOffer, price, quantity); err != nil {
		return OfferView{}, err
	}
	ledger, err := consent.Seed(s.holdersOfLocked(permission.CapManageOffers))
	if err != nil {
		return OfferView{}, domainerr.Wrap(domainerr.CodeValidation, opCreateOffer, err)
	}

	s.nextOfferID++
	o := &Offer{
		ID:        s.nextOfferID,
		BuyerID:   buyerID,
		ProductID: productID,
		Price:     price,
		Quantity:  quantity,
		CreatedAt: now,
		Status:    OfferPending,
		ledger:    ledger,
	}
	s.offers[o.ID] = o
	s.offerOrder = append(s.offerOrder, o.ID)
	return o.view(), nil
}

func validateOfferTerms(op string, price float64, quantity int) error {
	if price <= 0 {
		return domainerr.Newf(domainerr.CodeValidation, op, "offered price %v must be positive", price)
	}
	if quantity <= 0 {
		return domainerr.Newf(domainerr.CodeValidation, op, "offered quantity %d must be positive", quantity)
	}
	return nil
}

// CounterOffer replaces the offer's terms on behalf of a manage-offers
// holder. Any edit to the payload resets every consent entry, including the
// counter-offering manager's own.
func (s *Store) CounterOffer(actorID uuid.UUID, offerID uint64, price float64, quantity int) (OfferView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.capabilitiesLocked(actorID).Has(permission.CapManageOffers) {
		return OfferView{}, domainerr.New(domainerr.CodeForbidden, opCounterOffer, "actor lacks manage-offers capability")
	}
	o, ok := s.offers[offerID]
	if !ok {
		return OfferView{}, domainerr.New(domainerr.CodeNotFound, opCounterOffer, "offer not found")
	}
	if err := validateOfferTerms(opCounterOffer, price, quantity); err != nil {
		return OfferView{}, err
	}

	o.Price = price
	o.Quantity = quantity
	o.Status = OfferPending
	o.ledger.ResetAll()
	return o.view(), nil
}

// ApproveOffer records one party's consent. Approvals from users absent from
// the ledger are a no-op. When the ledger becomes satisfied the offer is
// marked approved: acceptable for the buyer to pay, not purchased, not
// removed.
func (s *Store) ApproveOffer(approverID uuid.UUID, offerID uint64) (OfferView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.offers[offerID]
	if !ok {
		return OfferView{}, domainerr.New(domainerr.CodeNotFound, opApproveOffer, "offer not found")
	}
	o.ledger.Approve(approverID)
	if o.ledger.Satisfied() {
		o.Status = OfferApproved
	}
	return o.view(), nil
}

// RejectOffer discards the offer and its ledger without committing.
func (s *Store) RejectOffer(offerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropOfferLocked(opOffer, offerID)
}

// RemoveOffer discards the offer once the buyer has paid, or withdraws it.
func (s *Store) RemoveOffer(offerID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropOfferLocked(opOffer, offerID)
}

func (s *Store) dropOfferLocked(op string, offerID uint64) error {
	if _, ok := s.offers[offerID]; !ok {
		return domainerr.New(domainerr.CodeNotFound, op, "offer not found")
	}
	delete(s.offers, offerID)
	for i, id := range s.offerOrder {
		if id == offerID {
			s.offerOrder = append(s.offerOrder[:i], s.offerOrder[i+1:]...)
			break
		}
	}
	return nil
}

// Offer returns a snapshot of one offer.
func (s *Store) Offer(offerID uint64) (OfferView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[offerID]
	if !ok {
		return OfferView{}, domainerr.New(domainerr.CodeNotFound, opOffer, "offer not found")
	}
	return o.view(), nil
}

// Offers returns snapshots of all live offers in creation order.
func (s *Store) Offers() []OfferView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]OfferView, 0, len(s.offerOrder))
	for _, id := range s.offerOrder {
		out = append(out, s.offers[id].view())
	}
	return out
}
