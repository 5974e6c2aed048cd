package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/domain"
	"github.com/tropicbliss/ESD-Project/internal/domains/checkout/ports"
)

var _ ports.Journal = (*Journal)(nil)

// Journal persists saga executions in PostgreSQL. Caller owns DB lifecycle.
type Journal struct {
	db *gorm.DB
}

// NewJournal wires a PostgreSQL-backed saga journal.
func NewJournal(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

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

// Start inserts the running entry.
func (j *Journal) Start(ctx context.Context, record domain.SagaRecord) error {
	if err := j.ensureDB(); err != nil {
		return err
	}
	row := toDBRecord(record)
	return j.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
}

// Finish upserts the final state; the original start time is kept.
func (j *Journal) Finish(ctx context.Context, record domain.SagaRecord) error {
	if err := j.ensureDB(); err != nil {
		return err
	}
	row := toDBRecord(record)
	return j.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"appointment_id", "transaction_id", "total", "steps",
				"outcome", "failure_kind", "failure_message", "finished_at",
			}),
		}).
		Create(&row).Error
}

func (j *Journal) Get(ctx context.Context, id string) (*domain.SagaRecord, error) {
	if err := j.ensureDB(); err != nil {
		return nil, err
	}
	var row sagaRecord
	if err := j.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrSagaNotFound
		}
		return nil, err
	}
	return toDomainRecord(&row), nil
}

// List returns entries newest first; an empty outcome matches every entry.
func (j *Journal) List(ctx context.Context, outcome domain.Outcome) ([]*domain.SagaRecord, error) {
	if err := j.ensureDB(); err != nil {
		return nil, err
	}
	query := j.db.WithContext(ctx).Order("started_at DESC").Order("id")
	if outcome != "" {
		query = query.Where("outcome = ?", string(outcome))
	}
	var rows []sagaRecord
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.SagaRecord, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainRecord(&rows[i]))
	}
	return out, nil
}

// Purge removes finished entries older than cutoff. Use for housekeeping or cron.
func (j *Journal) Purge(ctx context.Context, outcome domain.Outcome, cutoff time.Time) (int64, error) {
	if err := j.ensureDB(); err != nil {
		return 0, err
	}
	query := j.db.WithContext(ctx).Where("finished_at IS NOT NULL AND finished_at < ?", cutoff)
	if outcome != "" {
		query = query.Where("outcome = ?", string(outcome))
	}
	result := query.Delete(&sagaRecord{})
	return result.RowsAffected, result.Error
}

func (j *Journal) ensureDB() error {
	if j == nil || j.db == nil {
		return errors.New("postgres saga journal not configured")
	}
	return nil
}

func toDBRecord(rec domain.SagaRecord) sagaRecord {
	return sagaRecord{
		ID:             rec.ID,
		Kind:           string(rec.Kind),
		GroomerName:    rec.GroomerName,
		UserName:       rec.UserName,
		AppointmentID:  rec.AppointmentID,
		TransactionID:  rec.TransactionID,
		Total:          rec.Total,
		Steps:          pq.StringArray(append([]string{}, rec.Steps...)),
		Outcome:        string(rec.Outcome),
		FailureKind:    rec.FailureKind,
		FailureMessage: rec.FailureMessage,
		StartedAt:      rec.StartedAt,
		FinishedAt:     rec.FinishedAt,
	}
}

func toDomainRecord(row *sagaRecord) *domain.SagaRecord {
	return &domain.SagaRecord{
		ID:             row.ID,
		Kind:           domain.SagaKind(row.Kind),
		GroomerName:    row.GroomerName,
		UserName:       row.UserName,
		AppointmentID:  row.AppointmentID,
		TransactionID:  row.TransactionID,
		Total:          row.Total,
		Steps:          append([]string{}, row.Steps...),
		Outcome:        domain.Outcome(row.Outcome),
		FailureKind:    row.FailureKind,
		FailureMessage: row.FailureMessage,
		StartedAt:      row.StartedAt,
		FinishedAt:     row.FinishedAt,
	}
}
