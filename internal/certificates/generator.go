package certificates

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/internal/ledger"
	"carbon-connect/marketplace-backend/pkg/apperrors"
)

// Artifact is a generated or signed certificate as a named byte blob.
type Artifact struct {
	Filename string
	Content  []byte
}

// Resolver loads the relations a certificate is rendered from.
// ledger.Repository satisfies it.
type Resolver interface {
	GetUser(ctx context.Context, id uuid.UUID) (*ledger.User, error)
	GetListing(ctx context.Context, id uuid.UUID) (*ledger.CreditListing, error)
}

// Generator renders settlement certificates. The layout is fixed; only the
// embedded generation timestamp and the filename suffix vary between runs on
// identical inputs.
type Generator struct {
	resolver Resolver
	logger   *zap.Logger
}

func NewGenerator(resolver Resolver, logger *zap.Logger) *Generator {
	return &Generator{resolver: resolver, logger: logger}
}

// CertificateFilename builds the unsigned artifact name. The order id and a
// random suffix are embedded per the platform naming convention.
func CertificateFilename(orderID uuid.UUID) string {
	token := uuid.New()
	return fmt.Sprintf("CarbonConnect_Certificate_Order_%s_%s.pdf", orderID, hex.EncodeToString(token[:4]))
}

// Generate renders the certificate for a confirmed order. A missing buyer,
// seller or listing is a referential-integrity violation: it is logged and
// surfaced as a RenderError, never retried.
func (g *Generator) Generate(ctx context.Context, order *ledger.Order) (*Artifact, error) {
	buyer, err := g.resolver.GetUser(ctx, order.BuyerID)
	if err != nil {
		return nil, g.renderFailure(order, "buyer", err)
	}
	seller, err := g.resolver.GetUser(ctx, order.SellerID)
	if err != nil {
		return nil, g.renderFailure(order, "seller", err)
	}
	listing, err := g.resolver.GetListing(ctx, order.CreditID)
	if err != nil {
		return nil, g.renderFailure(order, "credit listing", err)
	}

	generatedAt := time.Now().UTC()

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 25, 20)
	pdf.AddPage()

	// Header band
	pdf.SetFillColor(27, 94, 32)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 18)
	pdf.CellFormat(0, 14, "Carbon Credit Settlement Certificate", "", 1, "C", true, 0, "")
	pdf.Ln(6)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, fmt.Sprintf("Certificate for Order %s", order.ID), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	row := func(label, value string) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(55, 8, label, "B", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 8, value, "B", 1, "L", false, 0, "")
	}

	row("Order ID", order.ID.String())
	row("Buyer", fmt.Sprintf("%s <%s>", buyer.Username, buyer.Email))
	row("Seller", fmt.Sprintf("%s <%s>", seller.Username, seller.Email))
	row("Credit", listing.Title)
	row("Description", listing.Description)
	row("Quantity", fmt.Sprintf("%d %s", order.QuantityOrdered, listing.Unit))
	row("Price per unit", order.PricePerUnitAtOrder.StringFixed(2))
	row("Total price", order.TotalPrice.StringFixed(2))
	row("Generated at", generatedAt.Format("2006-01-02 15:04:05 UTC"))

	pdf.Ln(12)
	pdf.SetFont("Arial", "I", 9)
	pdf.SetTextColor(90, 90, 90)
	pdf.MultiCell(0, 5, "This certificate attests the settlement of the above order on the CarbonConnect platform. Its authenticity is guaranteed by the accompanying platform signature.", "", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("Certificate render failed",
			zap.String("order_id", order.ID.String()),
			zap.Error(err))
		return nil, &apperrors.RenderError{Err: err}
	}

	return &Artifact{
		Filename: CertificateFilename(order.ID),
		Content:  buf.Bytes(),
	}, nil
}

func (g *Generator) renderFailure(order *ledger.Order, relation string, err error) error {
	g.logger.Error("Certificate relation could not be resolved",
		zap.String("order_id", order.ID.String()),
		zap.String("relation", relation),
		zap.Error(err))
	return &apperrors.RenderError{Err: fmt.Errorf("resolve %s for order %s: %w", relation, order.ID, err)}
}
