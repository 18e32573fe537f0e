package app

import (
	"context"
	"sort"

	"keystats/domain/window"
	"keystats/models"
	"keystats/ports"

	"github.com/stretchr/testify/mock"
)

// fakeStore filters an in-memory table and records every query through
// testify's mock so tests can count store round-trips
type fakeStore struct {
	mock.Mock
	records []models.KeyRecord
}

func newFakeStore(records ...models.KeyRecord) *fakeStore {
	s := &fakeStore{}
	for _, r := range records {
		_ = s.Insert(context.Background(), &r)
	}
	s.On("FindInRange", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	s.On("FindAboveScore", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return s
}

func (s *fakeStore) FindInRange(ctx context.Context, r window.Range, order ports.Order, limit int) ([]models.KeyRecord, error) {
	if err := s.Called(r, order, limit).Error(0); err != nil {
		return nil, err
	}
	return s.filter(r, nil, order, limit), nil
}

func (s *fakeStore) FindAboveScore(ctx context.Context, r window.Range, threshold float64, order ports.Order, limit int) ([]models.KeyRecord, error) {
	if err := s.Called(r, threshold, order, limit).Error(0); err != nil {
		return nil, err
	}
	return s.filter(r, &threshold, order, limit), nil
}

func (s *fakeStore) Insert(_ context.Context, rec *models.KeyRecord) error {
	rec.ID = int64(len(s.records) + 1)
	s.records = append(s.records, *rec)
	return nil
}

func (s *fakeStore) Ping(context.Context) error { return nil }

func (s *fakeStore) filter(r window.Range, threshold *float64, order ports.Order, limit int) []models.KeyRecord {
	out := []models.KeyRecord{}
	for _, rec := range s.records {
		if !r.IsUnbounded() && (rec.CreatedAt == nil || !r.Contains(*rec.CreatedAt)) {
			continue
		}
		if threshold != nil && !(rec.ScoreValue() > *threshold) {
			continue
		}
		out = append(out, rec)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch order {
		case ports.OrderHighestScore:
			if a.ScoreValue() != b.ScoreValue() {
				return a.ScoreValue() > b.ScoreValue()
			}
			return a.ID < b.ID
		case ports.OrderNewest:
			return a.ID > b.ID
		default:
			return a.ID < b.ID
		}
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (s *fakeStore) queries() int {
	return len(s.Calls)
}
