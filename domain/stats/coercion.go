// Package stats computes the descriptive statistics, correlations and trend
// deltas reported for a window of key records. Every function is pure and
// never fails: undefined values become 0 and are counted in a Coercions.
package stats

import (
	"errors"
	"math"

	"keystats/models"

	mstats "github.com/montanaflynn/stats"
)

// Coercions counts values replaced by 0. Undefined covers results that are
// mathematically undefined (NaN, infinities, empty input); Faults covers
// library calls that failed for any other reason.
type Coercions struct {
	Undefined int
	Faults    int
}

// Clean returns v, or 0 when v is NaN or infinite
func (c *Coercions) Clean(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		if c != nil {
			c.Undefined++
		}
		return 0
	}
	return v
}

// From takes a (value, error) pair from montanaflynn/stats and cleans it.
// Empty-input errors are expected and count as undefined.
func (c *Coercions) From(v float64, err error) float64 {
	if err != nil {
		if c != nil {
			if errors.Is(err, mstats.ErrEmptyInput) {
				c.Undefined++
			} else {
				c.Faults++
			}
		}
		return 0
	}
	return c.Clean(v)
}

// Total is the number of coerced values
func (c *Coercions) Total() int {
	if c == nil {
		return 0
	}
	return c.Undefined + c.Faults
}

// Diagnostics converts the counts into the result block
func (c *Coercions) Diagnostics() models.Diagnostics {
	if c == nil {
		return models.Diagnostics{}
	}
	return models.Diagnostics{
		CoercedValues:     c.Undefined,
		ComputationFaults: c.Faults,
	}
}

// Round rounds half away from zero to the given number of decimals
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func column(rows []models.KeyRecord, name string) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r.Column(name)
	}
	return out
}
