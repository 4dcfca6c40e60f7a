package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"carbon-connect/marketplace-backend/internal/database"
	"carbon-connect/marketplace-backend/pkg/apperrors"
)

// Repository is the ledger store: users, credit listings and orders, plus the
// transactional primitives the settlement commit is built from.
type Repository interface {
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	CreateListing(ctx context.Context, l *CreditListing) error
	GetListing(ctx context.Context, id uuid.UUID) (*CreditListing, error)
	UpdateListingDecision(ctx context.Context, l *CreditListing) error
	ListListingsBySeller(ctx context.Context, sellerID uuid.UUID) ([]CreditListing, error)
	ListListingsByStatus(ctx context.Context, status CreditStatus) ([]CreditListing, error)

	CreateOrder(ctx context.Context, o *Order) error
	GetOrder(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateOrderAction(ctx context.Context, o *Order) error
	ListOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error)
	ListOrdersBySeller(ctx context.Context, sellerID uuid.UUID) ([]Order, error)

	// WithTx runs fn in one transaction; the ForUpdate/Reserve/Complete
	// methods below only make sense inside it.
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
	GetOrderForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Order, error)
	GetListingForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*CreditListing, error)
	ReserveListing(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, quantity int64) error
	CompleteOrder(ctx context.Context, tx *sqlx.Tx, p CompleteOrderParams) error
}

// CompleteOrderParams is the terminal order update written by settlement.
type CompleteOrderParams struct {
	OrderID                   uuid.UUID
	CertificateFilename       string
	SignedCertificateFilename string
	CompletedAt               time.Time
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	var u User
	err := r.db.GetContext(ctx, &u, "SELECT * FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("user", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *postgresRepository) CreateListing(ctx context.Context, l *CreditListing) error {
	query := `
		INSERT INTO carbon_credits (
			id, seller_id, title, description, quantity, price_per_unit, unit,
			source_project_type, source_project_location, image_filename,
			verification_filename, validity_start, validity_end, status,
			admin_remarks, reviewer_id, reviewed_at, submitted_at, updated_at
		) VALUES (
			:id, :seller_id, :title, :description, :quantity, :price_per_unit, :unit,
			:source_project_type, :source_project_location, :image_filename,
			:verification_filename, :validity_start, :validity_end, :status,
			:admin_remarks, :reviewer_id, :reviewed_at, :submitted_at, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, l)
	return err
}

func (r *postgresRepository) GetListing(ctx context.Context, id uuid.UUID) (*CreditListing, error) {
	var l CreditListing
	err := r.db.GetContext(ctx, &l, "SELECT * FROM carbon_credits WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("credit listing", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *postgresRepository) UpdateListingDecision(ctx context.Context, l *CreditListing) error {
	query := `
		UPDATE carbon_credits SET
			status = :status,
			admin_remarks = :admin_remarks,
			reviewer_id = :reviewer_id,
			reviewed_at = :reviewed_at,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, l)
	return err
}

func (r *postgresRepository) ListListingsBySeller(ctx context.Context, sellerID uuid.UUID) ([]CreditListing, error) {
	var listings []CreditListing
	err := r.db.SelectContext(ctx, &listings,
		"SELECT * FROM carbon_credits WHERE seller_id = $1 ORDER BY submitted_at DESC", sellerID)
	return listings, err
}

func (r *postgresRepository) ListListingsByStatus(ctx context.Context, status CreditStatus) ([]CreditListing, error) {
	var listings []CreditListing
	err := r.db.SelectContext(ctx, &listings,
		"SELECT * FROM carbon_credits WHERE status = $1 ORDER BY submitted_at ASC", status)
	return listings, err
}

func (r *postgresRepository) CreateOrder(ctx context.Context, o *Order) error {
	query := `
		INSERT INTO orders (
			id, buyer_id, credit_id, seller_id, quantity_ordered,
			price_per_unit_at_order, total_price, status, buyer_remarks,
			seller_remarks, certificate_filename, signed_certificate_filename,
			order_date, seller_action_date, completion_date, updated_at
		) VALUES (
			:id, :buyer_id, :credit_id, :seller_id, :quantity_ordered,
			:price_per_unit_at_order, :total_price, :status, :buyer_remarks,
			:seller_remarks, :certificate_filename, :signed_certificate_filename,
			:order_date, :seller_action_date, :completion_date, :updated_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, o)
	return err
}

func (r *postgresRepository) GetOrder(ctx context.Context, id uuid.UUID) (*Order, error) {
	var o Order
	err := r.db.GetContext(ctx, &o, "SELECT * FROM orders WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("order", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) UpdateOrderAction(ctx context.Context, o *Order) error {
	query := `
		UPDATE orders SET
			status = :status,
			seller_remarks = :seller_remarks,
			seller_action_date = :seller_action_date,
			completion_date = :completion_date,
			updated_at = :updated_at
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, o)
	return err
}

func (r *postgresRepository) ListOrdersByBuyer(ctx context.Context, buyerID uuid.UUID) ([]Order, error) {
	var orders []Order
	err := r.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE buyer_id = $1 ORDER BY order_date DESC", buyerID)
	return orders, err
}

func (r *postgresRepository) ListOrdersBySeller(ctx context.Context, sellerID uuid.UUID) ([]Order, error) {
	var orders []Order
	err := r.db.SelectContext(ctx, &orders,
		"SELECT * FROM orders WHERE seller_id = $1 ORDER BY order_date DESC", sellerID)
	return orders, err
}

func (r *postgresRepository) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	return database.WithTransaction(ctx, r.db, fn)
}

// GetOrderForUpdate locks the order row for the rest of the transaction.
// Concurrent confirm attempts on the same order serialize here.
func (r *postgresRepository) GetOrderForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*Order, error) {
	var o Order
	err := tx.GetContext(ctx, &o, "SELECT * FROM orders WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("order", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresRepository) GetListingForUpdate(ctx context.Context, tx *sqlx.Tx, id uuid.UUID) (*CreditListing, error) {
	var l CreditListing
	err := tx.GetContext(ctx, &l, "SELECT * FROM carbon_credits WHERE id = $1 FOR UPDATE", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("credit listing", id.String())
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ReserveListing decrements the listing quantity, flipping the status to SOLD
// when it reaches exactly zero. The WHERE clause re-checks status and
// quantity so the decrement can never drive quantity negative even if the
// caller's earlier read was stale.
func (r *postgresRepository) ReserveListing(ctx context.Context, tx *sqlx.Tx, id uuid.UUID, quantity int64) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE carbon_credits SET
			quantity = quantity - $1,
			status = CASE WHEN quantity - $1 = 0 THEN 'sold' ELSE status END,
			updated_at = NOW()
		WHERE id = $2
		  AND status = 'approved'
		  AND quantity >= $1`,
		quantity, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &apperrors.InsufficientInventoryError{Requested: quantity}
	}
	return nil
}

func (r *postgresRepository) CompleteOrder(ctx context.Context, tx *sqlx.Tx, p CompleteOrderParams) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE orders SET
			status = $1,
			certificate_filename = $2,
			signed_certificate_filename = $3,
			seller_action_date = $4,
			completion_date = $4,
			updated_at = $4
		WHERE id = $5`,
		OrderCompleted, p.CertificateFilename, p.SignedCertificateFilename, p.CompletedAt, p.OrderID)
	return err
}
