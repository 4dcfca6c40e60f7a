package settlement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"carbon-connect/marketplace-backend/internal/certificates"
	"carbon-connect/marketplace-backend/internal/database"
	"carbon-connect/marketplace-backend/internal/identity"
	"carbon-connect/marketplace-backend/internal/ledger"
	"carbon-connect/marketplace-backend/pkg/apperrors"
	"carbon-connect/marketplace-backend/pkg/storage"
)

// Store is the slice of the ledger the orchestrator needs.
// ledger.Repository satisfies it.
type Store interface {
	GetOrder(ctx context.Context, id uuid.UUID) (*ledger.Order, error)
	GetListing(ctx context.Context, id uuid.UUID) (*ledger.CreditListing, error)
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	GetOrderForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*ledger.Order, error)
	CompleteOrder(ctx context.Context, tx *sqlx.Tx, p ledger.CompleteOrderParams) error
}

// Reserver decrements listing inventory inside the settlement transaction.
// The credits service satisfies it.
type Reserver interface {
	Reserve(ctx context.Context, tx *sqlx.Tx, listingID uuid.UUID, quantity int64) error
}

type Generator interface {
	Generate(ctx context.Context, order *ledger.Order) (*certificates.Artifact, error)
}

type Signer interface {
	Sign(artifact *certificates.Artifact) (*certificates.Artifact, error)
}

// Orchestrator runs the confirm-time settlement: validate, generate, sign,
// then one transactional commit of inventory and order state. Certificate
// generation and signing happen before the irreversible mutation, so a
// failure in either leaves the order in its pre-confirmation state and the
// caller can retry safely. File writes are compensated by explicit deletes,
// never left orphaned.
type Orchestrator struct {
	store     Store
	reserver  Reserver
	generator Generator
	signer    Signer
	artifacts *storage.FileStore
	logger    *zap.Logger
}

func NewOrchestrator(store Store, reserver Reserver, generator Generator, signer Signer, artifacts *storage.FileStore, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		reserver:  reserver,
		generator: generator,
		signer:    signer,
		artifacts: artifacts,
		logger:    logger,
	}
}

// Confirm settles the order on behalf of its seller.
func (o *Orchestrator) Confirm(ctx context.Context, caller identity.Caller, orderID uuid.UUID) (*ledger.Order, error) {
	// Steps 1-2: advisory validation, no mutation. Everything is
	// re-validated under row locks at commit time.
	order, err := o.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != caller.UserID {
		return nil, apperrors.Unauthorized("order belongs to a different seller")
	}
	if _, err := ledger.OrderTransitions.Next(order.Status, ledger.EventConfirm); err != nil {
		return nil, err
	}

	listing, err := o.store.GetListing(ctx, order.CreditID)
	if err != nil {
		return nil, err
	}
	if listing.Status != ledger.CreditApproved {
		return nil, &apperrors.StateTransitionError{
			Entity:  "credit listing",
			Current: string(listing.Status),
			Event:   "reserve",
		}
	}
	if listing.Quantity < order.QuantityOrdered {
		return nil, &apperrors.InsufficientInventoryError{
			Requested: order.QuantityOrdered,
			Available: listing.Quantity,
		}
	}

	// Step 3: generate and publish the unsigned certificate.
	artifact, err := o.generator.Generate(ctx, order)
	if err != nil {
		return nil, err
	}
	if err := o.artifacts.Save(storage.NamespaceCertificates, artifact.Filename, artifact.Content); err != nil {
		return nil, err
	}

	// Step 4: sign. A failure must not leave the unsigned artifact behind.
	signed, err := o.signer.Sign(artifact)
	if err != nil {
		o.discard(artifact.Filename, "")
		return nil, err
	}
	if err := o.artifacts.Save(storage.NamespaceSignedCertificates, signed.Filename, signed.Content); err != nil {
		o.discard(artifact.Filename, signed.Filename)
		return nil, err
	}

	// Step 5: the single transactional commit. Locks serialize concurrent
	// confirms; the inventory check and decrement share the transaction
	// with the order status write so two confirms cannot oversell.
	now := time.Now().UTC()
	err = o.store.WithTx(ctx, func(tx *sqlx.Tx) error {
		current, err := o.store.GetOrderForUpdate(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if current.SellerID != caller.UserID {
			return apperrors.Unauthorized("order belongs to a different seller")
		}
		if _, err := ledger.OrderTransitions.Next(current.Status, ledger.EventConfirm); err != nil {
			return err
		}
		if err := o.reserver.Reserve(ctx, tx, current.CreditID, current.QuantityOrdered); err != nil {
			return err
		}
		return o.store.CompleteOrder(ctx, tx, ledger.CompleteOrderParams{
			OrderID:                   current.ID,
			CertificateFilename:       artifact.Filename,
			SignedCertificateFilename: signed.Filename,
			CompletedAt:               now,
		})
	})
	if err != nil {
		// Step 6: no artifact may outlive a failed commit. The listing
		// quantity was only touched inside the aborted transaction, so
		// inventory is not lost.
		o.discard(artifact.Filename, signed.Filename)
		o.logger.Error("Settlement commit failed",
			zap.String("order_id", orderID.String()),
			zap.Bool("retryable", database.IsRetryable(err)),
			zap.Error(err))
		return nil, err
	}

	o.logger.Info("Order settled",
		zap.String("order_id", orderID.String()),
		zap.String("certificate", artifact.Filename),
		zap.String("signed_certificate", signed.Filename))

	return o.store.GetOrder(ctx, orderID)
}

// discard removes whichever artifacts exist for an abandoned settlement.
func (o *Orchestrator) discard(unsigned, signed string) {
	if unsigned != "" {
		if err := o.artifacts.Remove(storage.NamespaceCertificates, unsigned); err != nil {
			o.logger.Warn("Failed to remove unsigned certificate", zap.String("filename", unsigned), zap.Error(err))
		}
	}
	if signed != "" {
		if err := o.artifacts.Remove(storage.NamespaceSignedCertificates, signed); err != nil {
			o.logger.Warn("Failed to remove signed certificate", zap.String("filename", signed), zap.Error(err))
		}
	}
}
