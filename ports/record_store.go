package ports

import (
	"context"

	"keystats/domain/window"
	"keystats/models"
)

// Order is a whitelisted ORDER BY clause for record queries
type Order string

const (
	// OrderNewest sorts by identifier, newest first
	OrderNewest Order = "id DESC"
	// OrderHighestScore sorts by score descending, ties by identifier
	OrderHighestScore Order = "score DESC, id ASC"
	// OrderOldest sorts by creation time, oldest first
	OrderOldest Order = "created_at ASC, id ASC"
)

// Valid reports whether o is one of the known orders
func (o Order) Valid() bool {
	switch o {
	case OrderNewest, OrderHighestScore, OrderOldest:
		return true
	}
	return false
}

// KeyRecordStore reads key records by time window. Ranges are half-open
// [start, end); the unbounded range applies no time filter. A limit <= 0
// means no limit.
type KeyRecordStore interface {
	FindInRange(ctx context.Context, r window.Range, order Order, limit int) ([]models.KeyRecord, error)
	FindAboveScore(ctx context.Context, r window.Range, threshold float64, order Order, limit int) ([]models.KeyRecord, error)

	// Insert stores a record and sets its ID. Only seeding and tests write.
	Insert(ctx context.Context, rec *models.KeyRecord) error

	Ping(ctx context.Context) error
}
