package certificates

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/internal/ledger"
	"carbon-connect/marketplace-backend/pkg/apperrors"
)

type stubResolver struct {
	users    map[uuid.UUID]*ledger.User
	listings map[uuid.UUID]*ledger.CreditListing
}

func (r *stubResolver) GetUser(ctx context.Context, id uuid.UUID) (*ledger.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id.String())
	}
	return u, nil
}

func (r *stubResolver) GetListing(ctx context.Context, id uuid.UUID) (*ledger.CreditListing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, apperrors.NotFound("credit listing", id.String())
	}
	return l, nil
}

func settledOrderFixture() (*ledger.Order, *stubResolver) {
	buyer := &ledger.User{ID: uuid.New(), Username: "acme", Email: "buyer@example.com", Role: ledger.RoleBuyer}
	seller := &ledger.User{ID: uuid.New(), Username: "greenhills", Email: "seller@example.com", Role: ledger.RoleSeller}
	listing := &ledger.CreditListing{
		ID:          uuid.New(),
		SellerID:    seller.ID,
		Title:       "Mangrove restoration offsets",
		Description: "Verified blue-carbon credits",
		Unit:        "ton CO2e",
	}
	order := &ledger.Order{
		ID:                  uuid.New(),
		BuyerID:             buyer.ID,
		CreditID:            listing.ID,
		SellerID:            seller.ID,
		QuantityOrdered:     30,
		PricePerUnitAtOrder: decimal.NewFromInt(10),
		TotalPrice:          decimal.NewFromInt(300),
	}
	resolver := &stubResolver{
		users:    map[uuid.UUID]*ledger.User{buyer.ID: buyer, seller.ID: seller},
		listings: map[uuid.UUID]*ledger.CreditListing{listing.ID: listing},
	}
	return order, resolver
}

func TestGenerateRendersPDF(t *testing.T) {
	order, resolver := settledOrderFixture()
	generator := NewGenerator(resolver, zap.NewNop())

	artifact, err := generator.Generate(context.Background(), order)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(artifact.Content, []byte("%PDF")))
	assert.NotEmpty(t, artifact.Filename)
}

func TestGenerateFailsOnMissingRelation(t *testing.T) {
	order, resolver := settledOrderFixture()
	generator := NewGenerator(resolver, zap.NewNop())

	tests := []struct {
		name   string
		mutate func(*ledger.Order)
	}{
		{"missing buyer", func(o *ledger.Order) { o.BuyerID = uuid.New() }},
		{"missing seller", func(o *ledger.Order) { o.SellerID = uuid.New() }},
		{"missing listing", func(o *ledger.Order) { o.CreditID = uuid.New() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			broken := *order
			tt.mutate(&broken)

			_, err := generator.Generate(context.Background(), &broken)

			var render *apperrors.RenderError
			assert.ErrorAs(t, err, &render)
		})
	}
}

func TestCertificateFilenameConvention(t *testing.T) {
	orderID := uuid.New()
	pattern := regexp.MustCompile(`^CarbonConnect_Certificate_Order_` + orderID.String() + `_[0-9a-f]{8}\.pdf$`)

	first := CertificateFilename(orderID)
	second := CertificateFilename(orderID)

	assert.Regexp(t, pattern, first)
	assert.Regexp(t, pattern, second)
	assert.NotEqual(t, first, second)
}
