package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type progressRecord struct {
	bun.BaseModel `bun:"table:quiz_progress"`

	SessionKey string    `bun:"session_key,pk"`
	Payload    string    `bun:"payload,notnull"`
	UpdatedAt  time.Time `bun:"updated_at,notnull"`
}

// ProgressStore persists progress records in the quiz_progress table.
type ProgressStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewProgressStore(db *bun.DB) *ProgressStore {
	return &ProgressStore{db: db, now: time.Now}
}

func (s *ProgressStore) Load(ctx context.Context, key string) (string, bool, error) {
	var rec progressRecord
	err := s.db.NewSelect().Model(&rec).Where("session_key = ?", key).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("select progress: %w", err)
	}
	return rec.Payload, true, nil
}

func (s *ProgressStore) Save(ctx context.Context, key, value string) error {
	rec := &progressRecord{SessionKey: key, Payload: value, UpdatedAt: s.now()}
	_, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (session_key) DO UPDATE").
		Set("payload = EXCLUDED.payload").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}

func (s *ProgressStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.NewDelete().
		Model((*progressRecord)(nil)).
		Where("session_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}
	return nil
}
