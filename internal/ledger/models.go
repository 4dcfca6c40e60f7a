package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carbon-connect/marketplace-backend/pkg/workflows"
)

type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

type CreditStatus string

const (
	CreditPendingApproval CreditStatus = "pending_approval"
	CreditApproved        CreditStatus = "approved"
	CreditRejected        CreditStatus = "rejected"
	CreditSold            CreditStatus = "sold"
	CreditExpired         CreditStatus = "expired"
	CreditDelisted        CreditStatus = "delisted"
)

type OrderStatus string

const (
	OrderPendingSellerAction OrderStatus = "pending_seller_action"
	OrderConfirmedBySeller   OrderStatus = "confirmed_by_seller"
	OrderRejectedBySeller    OrderStatus = "rejected_by_seller"
	OrderCompleted           OrderStatus = "completed"
	OrderCancelledByBuyer    OrderStatus = "cancelled_by_buyer"
)

const (
	EventApprove workflows.Event = "approve"
	EventReject  workflows.Event = "reject"
	EventExhaust workflows.Event = "exhaust"
	EventDelist  workflows.Event = "delist"
	EventExpire  workflows.Event = "expire"

	EventConfirm  workflows.Event = "confirm"
	EventComplete workflows.Event = "complete"
	EventCancel   workflows.Event = "cancel"
)

// CreditTransitions is the single source of truth for listing status changes.
// REJECTED, SOLD, EXPIRED and DELISTED are terminal; a decided listing cannot
// be re-decided.
var CreditTransitions = workflows.New("credit listing", map[CreditStatus]map[workflows.Event]CreditStatus{
	CreditPendingApproval: {
		EventApprove: CreditApproved,
		EventReject:  CreditRejected,
	},
	CreditApproved: {
		EventExhaust: CreditSold,
		EventDelist:  CreditDelisted,
		EventExpire:  CreditExpired,
	},
	CreditRejected: {},
	CreditSold:     {},
	CreditExpired:  {},
	CreditDelisted: {},
})

// OrderTransitions governs order status changes. Confirmation settles the
// order in one step; CONFIRMED_BY_SELLER is kept for enum compatibility with
// records written by older deployments.
var OrderTransitions = workflows.New("order", map[OrderStatus]map[workflows.Event]OrderStatus{
	OrderPendingSellerAction: {
		EventConfirm: OrderCompleted,
		EventReject:  OrderRejectedBySeller,
		EventCancel:  OrderCancelledByBuyer,
	},
	OrderConfirmedBySeller: {
		EventComplete: OrderCompleted,
	},
	OrderRejectedBySeller: {},
	OrderCompleted:        {},
	OrderCancelledByBuyer: {},
})

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	Role        Role      `json:"role" db:"role"`
	CompanyName *string   `json:"company_name,omitempty" db:"company_name"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreditListing is a seller's offer of a quantity of carbon-offset units.
// Quantity is integral units and never goes negative; PricePerUnit is the
// listing price, snapshotted onto orders at placement.
type CreditListing struct {
	ID                    uuid.UUID       `json:"id" db:"id"`
	SellerID              uuid.UUID       `json:"seller_id" db:"seller_id"`
	Title                 string          `json:"title" db:"title"`
	Description           string          `json:"description" db:"description"`
	Quantity              int64           `json:"quantity" db:"quantity"`
	PricePerUnit          decimal.Decimal `json:"price_per_unit" db:"price_per_unit"`
	Unit                  string          `json:"unit" db:"unit"`
	SourceProjectType     *string         `json:"source_project_type,omitempty" db:"source_project_type"`
	SourceProjectLocation *string         `json:"source_project_location,omitempty" db:"source_project_location"`
	ImageFilename         *string         `json:"image_filename,omitempty" db:"image_filename"`
	VerificationFilename  *string         `json:"verification_filename,omitempty" db:"verification_filename"`
	ValidityStart         *time.Time      `json:"validity_start,omitempty" db:"validity_start"`
	ValidityEnd           *time.Time      `json:"validity_end,omitempty" db:"validity_end"`
	Status                CreditStatus    `json:"status" db:"status"`
	AdminRemarks          *string         `json:"admin_remarks,omitempty" db:"admin_remarks"`
	ReviewerID            *uuid.UUID      `json:"reviewer_id,omitempty" db:"reviewer_id"`
	ReviewedAt            *time.Time      `json:"reviewed_at,omitempty" db:"reviewed_at"`
	SubmittedAt           time.Time       `json:"submitted_at" db:"submitted_at"`
	UpdatedAt             time.Time       `json:"updated_at" db:"updated_at"`
}

// Order is a buyer's claim against a quantity of a listing at the price in
// effect at order time. SellerID is copied from the listing at placement and
// never changes. TotalPrice is fixed at creation and never recomputed.
type Order struct {
	ID                        uuid.UUID       `json:"id" db:"id"`
	BuyerID                   uuid.UUID       `json:"buyer_id" db:"buyer_id"`
	CreditID                  uuid.UUID       `json:"credit_id" db:"credit_id"`
	SellerID                  uuid.UUID       `json:"seller_id" db:"seller_id"`
	QuantityOrdered           int64           `json:"quantity_ordered" db:"quantity_ordered"`
	PricePerUnitAtOrder       decimal.Decimal `json:"price_per_unit_at_order" db:"price_per_unit_at_order"`
	TotalPrice                decimal.Decimal `json:"total_price" db:"total_price"`
	Status                    OrderStatus     `json:"status" db:"status"`
	BuyerRemarks              *string         `json:"buyer_remarks,omitempty" db:"buyer_remarks"`
	SellerRemarks             *string         `json:"seller_remarks,omitempty" db:"seller_remarks"`
	CertificateFilename       *string         `json:"certificate_filename,omitempty" db:"certificate_filename"`
	SignedCertificateFilename *string         `json:"signed_certificate_filename,omitempty" db:"signed_certificate_filename"`
	OrderDate                 time.Time       `json:"order_date" db:"order_date"`
	SellerActionDate          *time.Time      `json:"seller_action_date,omitempty" db:"seller_action_date"`
	CompletionDate            *time.Time      `json:"completion_date,omitempty" db:"completion_date"`
	UpdatedAt                 time.Time       `json:"updated_at" db:"updated_at"`
}
