package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the orchestrator's own schema: the saga journal and the checkout idempotency keys.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&sagaRecord{},
		&idempotencyRecord{},
	)
}

// Saga journal schema mirrors the checkout Postgres journal.
type sagaRecord struct {
	ID             string         `gorm:"primaryKey;column:id;size:64"`
	Kind           string         `gorm:"column:kind;type:varchar(16)"`
	GroomerName    string         `gorm:"column:groomer_name"`
	UserName       string         `gorm:"column:user_name"`
	AppointmentID  string         `gorm:"column:appointment_id;index"`
	TransactionID  string         `gorm:"column:transaction_id"`
	Total          float64        `gorm:"column:total"`
	Steps          pq.StringArray `gorm:"column:steps;type:text[]"`
	Outcome        string         `gorm:"column:outcome;type:varchar(32);index:idx_saga_outcome_finished"`
	FailureKind    string         `gorm:"column:failure_kind;type:varchar(32)"`
	FailureMessage string         `gorm:"column:failure_message"`
	StartedAt      time.Time      `gorm:"column:started_at;index"`
	FinishedAt     *time.Time     `gorm:"column:finished_at;index:idx_saga_outcome_finished"`
}

func (sagaRecord) TableName() string { return "saga_journal" }

// Idempotency schema mirrors the checkout Postgres idempotency store.
type idempotencyRecord struct {
	Key           string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash   string    `gorm:"column:request_hash;size:128"`
	CheckoutURL   string    `gorm:"column:checkout_url"`
	AppointmentID string    `gorm:"column:appointment_id"`
	TransactionID string    `gorm:"column:transaction_id"`
	TotalPrice    float64   `gorm:"column:total_price"`
	DayLength     int       `gorm:"column:day_length"`
	CreatedAt     time.Time `gorm:"column:created_at;index"`
}

func (idempotencyRecord) TableName() string { return "checkout_idempotency_keys" }
