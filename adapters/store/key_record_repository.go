package store

import (
	"context"
	"fmt"
	"strings"

	"keystats/domain/window"
	"keystats/models"
	"keystats/ports"

	"github.com/jmoiron/sqlx"
)

const keyRecordColumns = `id, created_at, fingerprint, repeat_letter_score, increasing_letter_score,
	decreasing_letter_score, magic_letter_score, score, unique_letters_count`

// KeyRecordRepository implements ports.KeyRecordStore over the key_infos table
type KeyRecordRepository struct {
	db *sqlx.DB
}

// NewKeyRecordRepository creates a new key record repository
func NewKeyRecordRepository(db *sqlx.DB) *KeyRecordRepository {
	return &KeyRecordRepository{db: db}
}

var _ ports.KeyRecordStore = (*KeyRecordRepository)(nil)

// FindInRange returns the records created inside r
func (r *KeyRecordRepository) FindInRange(ctx context.Context, rng window.Range, order ports.Order, limit int) ([]models.KeyRecord, error) {
	return r.find(ctx, rng, nil, order, limit)
}

// FindAboveScore returns the records inside r whose score exceeds threshold
func (r *KeyRecordRepository) FindAboveScore(ctx context.Context, rng window.Range, threshold float64, order ports.Order, limit int) ([]models.KeyRecord, error) {
	return r.find(ctx, rng, &threshold, order, limit)
}

func (r *KeyRecordRepository) find(ctx context.Context, rng window.Range, threshold *float64, order ports.Order, limit int) ([]models.KeyRecord, error) {
	if !order.Valid() {
		return nil, fmt.Errorf("unsupported record order %q", order)
	}

	var (
		conds []string
		args  []interface{}
	)
	if !rng.IsUnbounded() {
		conds = append(conds, "created_at >= ?", "created_at < ?")
		args = append(args, rng.Start, rng.End)
	}
	if threshold != nil {
		conds = append(conds, "score > ?")
		args = append(args, *threshold)
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(keyRecordColumns)
	sb.WriteString(" FROM key_infos")
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(string(order))
	if limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows := []models.KeyRecord{}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(sb.String()), args...); err != nil {
		return nil, fmt.Errorf("failed to query key records: %w", err)
	}
	for i := range rows {
		if rows[i].CreatedAt != nil {
			t := naive(*rows[i].CreatedAt)
			rows[i].CreatedAt = &t
		}
	}
	return rows, nil
}

// Insert stores a record and sets its ID
func (r *KeyRecordRepository) Insert(ctx context.Context, rec *models.KeyRecord) error {
	query := `INSERT INTO key_infos (created_at, fingerprint, repeat_letter_score, increasing_letter_score,
		decreasing_letter_score, magic_letter_score, score, unique_letters_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	err := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		rec.CreatedAt, rec.Fingerprint, rec.RepeatLetterScore, rec.IncreasingLetterScore,
		rec.DecreasingLetterScore, rec.MagicLetterScore, rec.Score, rec.UniqueLettersCount,
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert key record: %w", err)
	}
	return nil
}

// Count returns the number of stored records
func (r *KeyRecordRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM key_infos"); err != nil {
		return 0, fmt.Errorf("failed to count key records: %w", err)
	}
	return n, nil
}

// Ping checks the database connection
func (r *KeyRecordRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
