// Package history keeps every window diagnosis in PostgreSQL through GORM.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/effieaponniah/Arrythmia-Detect/internal/domain"
	"github.com/effieaponniah/Arrythmia-Detect/internal/ports"
)

// DiagnosisRecord is one classified (or failed) window.
type DiagnosisRecord struct {
	ID            uuid.UUID              `gorm:"type:uuid;primaryKey"`
	RunID         string                 `gorm:"type:varchar(64);not null;index"`
	Device        string                 `gorm:"type:varchar(255);not null;index"`
	WindowID      string                 `gorm:"type:varchar(64);not null;uniqueIndex"`
	Seq           int                    `gorm:"not null"`
	Samples       int                    `gorm:"not null"`
	CompletedAt   time.Time              `gorm:"not null;index"`
	ClassIndex    *int                   `gorm:"index"`
	Label         string                 `gorm:"type:varchar(255)"`
	Confidence    *float64               `gorm:"type:double precision"`
	Probabilities []float64              `gorm:"serializer:json;type:jsonb"`
	Alerted       bool                   `gorm:"not null;default:false"`
	Dispatch      *domain.DispatchReport `gorm:"serializer:json;type:jsonb"`
	Error         string                 `gorm:"type:text"`
	CreatedAt     time.Time              `gorm:"not null"`
}

func (DiagnosisRecord) TableName() string {
	return "ecg_diagnoses"
}

// ToRecord maps a window outcome onto its table row.
func ToRecord(out domain.WindowOutcome) DiagnosisRecord {
	rec := DiagnosisRecord{
		ID:            uuid.New(),
		RunID:         out.RunID,
		Device:        out.Device,
		WindowID:      out.WindowID,
		Seq:           out.Seq,
		Samples:       out.Samples,
		CompletedAt:   out.CompletedAt.UTC(),
		Probabilities: append([]float64(nil), out.Probabilities...),
		Dispatch:      out.Dispatch,
		Error:         out.Error,
	}
	if out.Diagnosis != nil {
		class, conf := out.Diagnosis.ClassIndex, out.Diagnosis.Confidence
		rec.ClassIndex = &class
		rec.Confidence = &conf
		rec.Label = out.Diagnosis.Label
	}
	if out.Alert != nil {
		rec.Alerted = out.Alert.Alert
	}
	return rec
}

type Store struct {
	db *gorm.DB
}

var _ ports.ResultSink = (*Store)(nil)

// Open connects to PostgreSQL and migrates the diagnosis table.
func Open(dsn string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, &domain.OpError{Op: "history.open", Kind: domain.KindInvalidConfig, Err: fmt.Errorf("history.dsn is empty: %w", domain.ErrInvalidConfig)}
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, &domain.OpError{Op: "history.open", Kind: domain.KindConnection, Err: fmt.Errorf("%w: %v", domain.ErrConnection, err)}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, &domain.OpError{Op: "history.open", Kind: domain.KindConnection, Err: fmt.Errorf("%w: %v", domain.ErrConnection, err)}
	}
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&DiagnosisRecord{}); err != nil {
		_ = sqlDB.Close()
		return nil, &domain.OpError{Op: "history.migrate", Kind: domain.KindExecution, Err: err}
	}

	return &Store{db: db}, nil
}

// Publish inserts one row per window.
func (s *Store) Publish(ctx context.Context, out domain.WindowOutcome) error {
	rec := ToRecord(out)
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return &domain.OpError{Op: "history.insert", Kind: domain.KindExecution, Err: err}
	}
	return nil
}

// Recent returns the newest rows for device, newest first.
func (s *Store) Recent(ctx context.Context, device string, limit int) ([]DiagnosisRecord, error) {
	var rows []DiagnosisRecord
	q := s.db.WithContext(ctx).Order("completed_at desc").Limit(limit)
	if device != "" {
		q = q.Where("device = ?", device)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, &domain.OpError{Op: "history.recent", Kind: domain.KindExecution, Err: err}
	}
	return rows, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
