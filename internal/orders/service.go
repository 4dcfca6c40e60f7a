package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/internal/identity"
	"carbon-connect/marketplace-backend/internal/ledger"
	"carbon-connect/marketplace-backend/pkg/apperrors"
)

type PlaceRequest struct {
	CreditID uuid.UUID `json:"credit_id"`
	Quantity int64     `json:"quantity"`
	Remarks  string    `json:"remarks"`
}

// Settler runs the confirm-time settlement. The settlement orchestrator
// satisfies it.
type Settler interface {
	Confirm(ctx context.Context, caller identity.Caller, orderID uuid.UUID) (*ledger.Order, error)
}

// Service is the order lifecycle manager: placement, buyer cancellation,
// seller rejection, and delegation of confirmation to settlement.
type Service struct {
	repo    ledger.Repository
	settler Settler
	logger  *zap.Logger
}

func NewService(repo ledger.Repository, settler Settler, logger *zap.Logger) *Service {
	return &Service{repo: repo, settler: settler, logger: logger}
}

// Place records a buyer's purchase intent against an approved listing,
// snapshotting the price in effect. Inventory is NOT reserved here;
// reservation happens at confirmation, and availability is re-validated then.
func (s *Service) Place(ctx context.Context, caller identity.Caller, req PlaceRequest) (*ledger.Order, error) {
	if caller.Role != ledger.RoleBuyer {
		return nil, apperrors.Unauthorized("only buyers may place orders")
	}

	listing, err := s.repo.GetListing(ctx, req.CreditID)
	if err != nil {
		return nil, err
	}
	if listing.Status != ledger.CreditApproved {
		return nil, &apperrors.StateTransitionError{
			Entity:  "credit listing",
			Current: string(listing.Status),
			Event:   "order",
		}
	}
	if listing.SellerID == caller.UserID {
		return nil, &apperrors.SelfTradeError{}
	}
	if req.Quantity <= 0 {
		return nil, apperrors.Validation("quantity", "must be positive")
	}
	if req.Quantity > listing.Quantity {
		return nil, apperrors.Validation("quantity", "exceeds available quantity")
	}

	now := time.Now().UTC()
	order := &ledger.Order{
		ID:                  uuid.New(),
		BuyerID:             caller.UserID,
		CreditID:            listing.ID,
		SellerID:            listing.SellerID,
		QuantityOrdered:     req.Quantity,
		PricePerUnitAtOrder: listing.PricePerUnit,
		TotalPrice:          listing.PricePerUnit.Mul(decimal.NewFromInt(req.Quantity)),
		Status:              ledger.OrderPendingSellerAction,
		OrderDate:           now,
		UpdatedAt:           now,
	}
	if req.Remarks != "" {
		order.BuyerRemarks = &req.Remarks
	}

	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_id", caller.UserID.String()),
		zap.String("credit_id", listing.ID.String()),
		zap.Int64("quantity", req.Quantity))

	return order, nil
}

// Cancel lets the order's buyer withdraw it while the seller has not acted.
func (s *Service) Cancel(ctx context.Context, caller identity.Caller, orderID uuid.UUID) (*ledger.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != caller.UserID {
		return nil, apperrors.Unauthorized("order belongs to a different buyer")
	}

	next, err := ledger.OrderTransitions.Next(order.Status, ledger.EventCancel)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	order.Status = next
	order.CompletionDate = &now
	order.UpdatedAt = now

	if err := s.repo.UpdateOrderAction(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order cancelled by buyer", zap.String("order_id", order.ID.String()))
	return order, nil
}

// Reject lets the order's seller decline it.
func (s *Service) Reject(ctx context.Context, caller identity.Caller, orderID uuid.UUID, remarks string) (*ledger.Order, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != caller.UserID {
		return nil, apperrors.Unauthorized("order belongs to a different seller")
	}

	next, err := ledger.OrderTransitions.Next(order.Status, ledger.EventReject)
	if err != nil {
		return nil, err
	}

	if remarks == "" {
		remarks = "Rejected by seller."
	}
	now := time.Now().UTC()
	order.Status = next
	order.SellerRemarks = &remarks
	order.SellerActionDate = &now
	order.UpdatedAt = now

	if err := s.repo.UpdateOrderAction(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("Order rejected by seller", zap.String("order_id", order.ID.String()))
	return order, nil
}

// Confirm delegates to the settlement orchestrator; all state mutation
// happens there.
func (s *Service) Confirm(ctx context.Context, caller identity.Caller, orderID uuid.UUID) (*ledger.Order, error) {
	return s.settler.Confirm(ctx, caller, orderID)
}

// ListMine returns the caller's placed orders, newest first.
func (s *Service) ListMine(ctx context.Context, caller identity.Caller) ([]ledger.Order, error) {
	return s.repo.ListOrdersByBuyer(ctx, caller.UserID)
}

// ListReceived returns orders against the caller's listings, newest first.
func (s *Service) ListReceived(ctx context.Context, caller identity.Caller) ([]ledger.Order, error) {
	return s.repo.ListOrdersBySeller(ctx, caller.UserID)
}
