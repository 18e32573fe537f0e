package stats

import (
	"math"

	"keystats/models"

	"gonum.org/v1/gonum/mat"
	gstat "gonum.org/v1/gonum/stat"
)

// CorrelationMatrix returns the Pearson correlation between every pair of
// numeric columns, keyed column -> column, rounded to 3 decimals. Missing
// values count as 0; cells that are undefined (constant column, fewer than
// two rows) are 0, including the diagonal.
func CorrelationMatrix(rows []models.KeyRecord, c *Coercions) map[string]map[string]float64 {
	cols := models.NumericColumns
	out := make(map[string]map[string]float64, len(cols))
	for _, name := range cols {
		out[name] = make(map[string]float64, len(cols))
	}

	if len(rows) < 2 {
		for _, a := range cols {
			for _, b := range cols {
				out[a][b] = c.Clean(math.NaN())
			}
		}
		return out
	}

	data := mat.NewDense(len(rows), len(cols), nil)
	for i, r := range rows {
		for j, name := range cols {
			data.Set(i, j, r.Column(name))
		}
	}

	cov := mat.NewSymDense(len(cols), nil)
	gstat.CovarianceMatrix(cov, data, nil)

	for i, a := range cols {
		for j, b := range cols {
			denom := math.Sqrt(cov.At(i, i) * cov.At(j, j))
			var r float64
			if denom == 0 {
				r = math.NaN()
			} else {
				r = cov.At(i, j) / denom
			}
			out[a][b] = Round(c.Clean(r), 3)
		}
	}
	return out
}
