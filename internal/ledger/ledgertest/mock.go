// Package ledgertest provides test doubles for the ledger repository.
package ledgertest

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/mock"

	"carbon-connect/marketplace-backend/internal/ledger"
)

// MockRepository is a testify mock of ledger.Repository.
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetUser(ctx context.Context, id uuid.UUID) (*ledger.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.User), args.Error(1)
}

func (m *MockRepository) CreateListing(ctx context.Context, l *ledger.CreditListing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) GetListing(ctx context.Context, id uuid.UUID) (*ledger.CreditListing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.CreditListing), args.Error(1)
}

func (m *MockRepository) UpdateListingDecision(ctx context.Context, l *ledger.CreditListing) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockRepository) ListListingsBySeller(ctx context.Context, sellerID uuid.UUID) ([]ledger.CreditListing, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]ledger.CreditListing), args.Error(1)
}

func (m *MockRepository) ListListingsByStatus(ctx context.Context, status ledger.CreditStatus) ([]ledger.CreditListing, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]ledger.CreditListing), args.Error(1)
}

func (m *MockRepository) CreateOrder(ctx context.Context, o *ledger.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) GetOrder(ctx context.Context, id uuid.UUID) (*ledger.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Order), args.Error(1)
}

func (m *MockRepository) UpdateOrderAction(ctx context.Context, o *ledger.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) ListOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]ledger.Order, error) {
	args := m.Called(ctx, buyerID)
	return args.Get(0).([]ledger.Order), args.Error(1)
}

func (m *MockRepository) ListOrdersBySeller(ctx context.Context, sellerID uuid.UUID) ([]ledger.Order, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]ledger.Order), args.Error(1)
}

func (m *MockRepository) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(nil)
}

func (m *MockRepository) GetOrderForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*ledger.Order, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Order), args.Error(1)
}

func (m *MockRepository) GetListingForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*ledger.CreditListing, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.CreditListing), args.Error(1)
}

func (m *MockRepository) ReserveListing(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, quantity int64) error {
	args := m.Called(ctx, tx, id, quantity)
	return args.Error(0)
}

func (m *MockRepository) CompleteOrder(ctx context.Context, tx *sqlx.Tx, p ledger.CompleteOrderParams) error {
	args := m.Called(ctx, tx, p)
	return args.Error(0)
}
