package credits

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/internal/identity"
	"carbon-connect/marketplace-backend/internal/ledger"
	"carbon-connect/marketplace-backend/pkg/apperrors"
)

// Decision is an admin verdict on a pending listing.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type SubmitRequest struct {
	Title                 string          `json:"title"`
	Description           string          `json:"description"`
	Quantity              int64           `json:"quantity"`
	PricePerUnit          decimal.Decimal `json:"price_per_unit"`
	Unit                  string          `json:"unit"`
	SourceProjectType     *string         `json:"source_project_type,omitempty"`
	SourceProjectLocation *string         `json:"source_project_location,omitempty"`
	ImageFilename         *string         `json:"image_filename,omitempty"`
	VerificationFilename  *string         `json:"verification_filename,omitempty"`
	ValidityStart         *time.Time      `json:"validity_start,omitempty"`
	ValidityEnd           *time.Time      `json:"validity_end,omitempty"`
}

// Service is the credit lifecycle manager: listing submission, admin
// decision, and the in-transaction inventory reservation used by settlement.
type Service struct {
	repo   ledger.Repository
	logger *zap.Logger
}

func NewService(repo ledger.Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Submit creates a listing in PENDING_APPROVAL on behalf of the seller.
// Image and verification filenames arrive pre-validated from the upload
// collaborator.
func (s *Service) Submit(ctx context.Context, caller identity.Caller, req SubmitRequest) (*ledger.CreditListing, error) {
	if caller.Role != ledger.RoleSeller {
		return nil, apperrors.Unauthorized("only sellers may list credits")
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperrors.Validation("title", "must not be empty")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperrors.Validation("description", "must not be empty")
	}
	if req.Quantity <= 0 {
		return nil, apperrors.Validation("quantity", "must be positive")
	}
	if !req.PricePerUnit.IsPositive() {
		return nil, apperrors.Validation("price_per_unit", "must be positive")
	}

	unit := req.Unit
	if unit == "" {
		unit = "ton CO2e"
	}

	now := time.Now().UTC()
	listing := &ledger.CreditListing{
		ID:                    uuid.New(),
		SellerID:              caller.UserID,
		Title:                 req.Title,
		Description:           req.Description,
		Quantity:              req.Quantity,
		PricePerUnit:          req.PricePerUnit,
		Unit:                  unit,
		SourceProjectType:     req.SourceProjectType,
		SourceProjectLocation: req.SourceProjectLocation,
		ImageFilename:         req.ImageFilename,
		VerificationFilename:  req.VerificationFilename,
		ValidityStart:         req.ValidityStart,
		ValidityEnd:           req.ValidityEnd,
		Status:                ledger.CreditPendingApproval,
		SubmittedAt:           now,
		UpdatedAt:             now,
	}

	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("Credit listing submitted",
		zap.String("listing_id", listing.ID.String()),
		zap.String("seller_id", caller.UserID.String()),
		zap.Int64("quantity", listing.Quantity))

	return listing, nil
}

// Decide approves or rejects a pending listing. A listing that has already
// been decided cannot be re-decided.
func (s *Service) Decide(ctx context.Context, caller identity.Caller, listingID uuid.UUID, decision Decision, remarks string) (*ledger.CreditListing, error) {
	if caller.Role != ledger.RoleAdmin {
		return nil, apperrors.Unauthorized("only admins may decide listings")
	}

	var event = ledger.EventApprove
	switch decision {
	case DecisionApprove:
		if remarks == "" {
			remarks = "Approved by admin."
		}
	case DecisionReject:
		event = ledger.EventReject
		if strings.TrimSpace(remarks) == "" {
			return nil, apperrors.Validation("remarks", "rejection remarks are required")
		}
	default:
		return nil, apperrors.Validation("decision", "must be approve or reject")
	}

	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}

	next, err := ledger.CreditTransitions.Next(listing.Status, event)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listing.Status = next
	listing.AdminRemarks = &remarks
	listing.ReviewerID = &caller.UserID
	listing.ReviewedAt = &now
	listing.UpdatedAt = now

	if err := s.repo.UpdateListingDecision(ctx, listing); err != nil {
		return nil, err
	}

	s.logger.Info("Credit listing decided",
		zap.String("listing_id", listing.ID.String()),
		zap.String("decision", string(decision)),
		zap.String("reviewer_id", caller.UserID.String()))

	return listing, nil
}

// Reserve decrements a listing's quantity inside the caller's transaction.
// The listing row must already be locked by the settlement transaction; the
// status flips to SOLD when the quantity reaches exactly zero.
func (s *Service) Reserve(ctx context.Context, tx *sqlx.Tx, listingID uuid.UUID, quantity int64) error {
	listing, err := s.repo.GetListingForUpdate(ctx, tx, listingID)
	if err != nil {
		return err
	}
	if listing.Status != ledger.CreditApproved {
		return &apperrors.StateTransitionError{
			Entity:  "credit listing",
			Current: string(listing.Status),
			Event:   "reserve",
		}
	}
	if listing.Quantity < quantity {
		return &apperrors.InsufficientInventoryError{
			Requested: quantity,
			Available: listing.Quantity,
		}
	}
	return s.repo.ReserveListing(ctx, tx, listingID, quantity)
}

// ListMine returns the caller's own listings, newest first.
func (s *Service) ListMine(ctx context.Context, caller identity.Caller) ([]ledger.CreditListing, error) {
	if caller.Role != ledger.RoleSeller {
		return nil, apperrors.Unauthorized("only sellers have listings")
	}
	return s.repo.ListListingsBySeller(ctx, caller.UserID)
}

// ListPending returns the admin approval queue, oldest first.
func (s *Service) ListPending(ctx context.Context, caller identity.Caller) ([]ledger.CreditListing, error) {
	if caller.Role != ledger.RoleAdmin {
		return nil, apperrors.Unauthorized("only admins may view the approval queue")
	}
	return s.repo.ListListingsByStatus(ctx, ledger.CreditPendingApproval)
}
