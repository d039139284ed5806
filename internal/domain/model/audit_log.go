package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// AuditLog is one settlement, grant or refund attempt in the Postgres ledger.
type AuditLog struct {
	ID            int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	CorrelationID string            `gorm:"size:64;index" json:"correlation_id"`
	Operation     string            `gorm:"size:50;not null;index:idx_settlement_audit_op_outcome" json:"operation"`
	Outcome       string            `gorm:"size:50;not null;index:idx_settlement_audit_op_outcome" json:"outcome"`
	EntitlementID string            `gorm:"size:24;index" json:"entitlement_id,omitempty"`
	OrderID       string            `gorm:"size:100;index" json:"order_id,omitempty"`
	PaymentID     string            `gorm:"size:100" json:"payment_id,omitempty"`
	UserID        string            `gorm:"size:24" json:"user_id,omitempty"`
	Amount        decimal.Decimal   `gorm:"type:numeric(14,2)" json:"amount"`
	Currency      string            `gorm:"size:3" json:"currency,omitempty"`
	Reason        string            `gorm:"type:text" json:"reason,omitempty"`
	Metadata      datatypes.JSONMap `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	CreatedAt     time.Time         `gorm:"default:now();index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "settlement_audit_logs"
}
