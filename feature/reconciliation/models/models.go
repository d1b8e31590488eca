package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderForecast is one forecast revenue or expense line entered by staff.
type OrderForecast struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	ProjectCode          string          `gorm:"size:64" json:"project_code"`
	CustomerName         string          `gorm:"size:255" json:"customer_name"`
	AccountingPeriod     string          `gorm:"size:7;not null;index:idx_order_period_status,priority:1" json:"accounting_period"`
	AccountingItem       string          `gorm:"size:100;not null" json:"accounting_item"`
	Description          string          `gorm:"size:500" json:"description"`
	Amount               decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	ReconciliationStatus OrderStatus     `gorm:"size:16;not null;default:'unmatched';index:idx_order_period_status,priority:2" json:"reconciliation_status"`
	GLMatchID            *uint           `gorm:"uniqueIndex" json:"gl_match_id"`
	IsExcluded           bool            `gorm:"not null;default:false" json:"is_excluded"`
	ExclusionReason      *string         `gorm:"size:255" json:"exclusion_reason"`
	Version              int             `gorm:"not null;default:1" json:"version"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// BeforeCreate starts new orders unmatched.
func (o *OrderForecast) BeforeCreate(tx *gorm.DB) error {
	if o.ReconciliationStatus == "" {
		o.ReconciliationStatus = OrderUnmatched
	}
	if o.Version == 0 {
		o.Version = 1
	}
	return nil
}

// GLEntry is one line imported from the general-ledger export.
type GLEntry struct {
	ID                   uint            `gorm:"primaryKey" json:"id"`
	VoucherNo            string          `gorm:"size:64" json:"voucher_no"`
	TransactionDate      time.Time       `gorm:"not null" json:"transaction_date"`
	AccountCode          string          `gorm:"size:32" json:"account_code"`
	AccountName          string          `gorm:"size:100" json:"account_name"`
	Description          string          `gorm:"size:500" json:"description"`
	Amount               decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	DebitCredit          string          `gorm:"size:8" json:"debit_credit"`
	Period               string          `gorm:"size:7;not null;index:idx_gl_period_status,priority:1" json:"period"`
	ReconciliationStatus GLStatus        `gorm:"size:16;not null;default:'unmatched';index:idx_gl_period_status,priority:2" json:"reconciliation_status"`
	IsExcluded           bool            `gorm:"not null;default:false" json:"is_excluded"`
	ExclusionReason      *string         `gorm:"size:255" json:"exclusion_reason"`
	Version              int             `gorm:"not null;default:1" json:"version"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// TableName pins the GL table name.
func (GLEntry) TableName() string {
	return "gl_entries"
}

// BeforeSave derives the period from the transaction date.
func (g *GLEntry) BeforeSave(tx *gorm.DB) error {
	if !g.TransactionDate.IsZero() {
		g.Period = PeriodOf(g.TransactionDate)
	}
	if g.ReconciliationStatus == "" {
		g.ReconciliationStatus = GLUnmatched
	}
	if g.Version == 0 {
		g.Version = 1
	}
	return nil
}

// ReconciliationRun records one execution of the orchestrator.
type ReconciliationRun struct {
	ID                   string          `gorm:"primaryKey;size:36" json:"id"`
	Period               string          `gorm:"size:7;not null;index" json:"period"`
	ExecutedAt           time.Time       `gorm:"not null;index" json:"executed_at"`
	ExecutedBy           string          `gorm:"size:100" json:"executed_by"`
	FuzzyThreshold       float64         `json:"fuzzy_threshold"`
	DateToleranceDays    int             `json:"date_tolerance_days"`
	AmountTolerance      decimal.Decimal `gorm:"type:decimal(20,4)" json:"amount_tolerance"`
	Strategies           string          `gorm:"size:64" json:"strategies"`
	NewlyMatched         int             `json:"newly_matched"`
	NewlyFuzzy           int             `json:"newly_fuzzy"`
	AlreadyMatchedOrders int             `json:"already_matched_orders"`
	AlreadyMatchedGL     int             `json:"already_matched_gl"`
	SkippedCandidates    int             `json:"skipped_candidates"`
}

// AccountMapping maps an accounting item label to a GL account.
type AccountMapping struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	AccountingItem string    `gorm:"size:100;not null;uniqueIndex:idx_mapping_item_code,priority:1" json:"accounting_item"`
	AccountCode    string    `gorm:"size:32;not null;uniqueIndex:idx_mapping_item_code,priority:2" json:"account_code"`
	AccountName    string    `gorm:"size:100" json:"account_name"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&OrderForecast{}, &GLEntry{}, &ReconciliationRun{}, &AccountMapping{}}
}
