package math

import (
	"fmt"
	"math"

	"github.com/drakos74/free-text/internal/model"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// FClassif computes the one-way ANOVA F-value of every column of x against the class labels y.
// Labels are expected to be dense over [0, classes).
// Columns with no within-class variance get an F-value of +Inf if their class means differ
// and NaN if the column is constant. The p-values follow the F(classes-1, n-classes) distribution.
// With no more samples than classes there are no within-class degrees of freedom and every score is NaN.
func FClassif(x model.Matrix, y []int, classes int) (f []float64, p []float64, err error) {
	n, cols := x.Dims()
	if n != len(y) {
		return nil, nil, fmt.Errorf("rows %d vs labels %d: %w", n, len(y), model.ErrDimensionMismatch)
	}
	if classes < 2 {
		return nil, nil, fmt.Errorf("cannot compute f-test for %d classes: %w", classes, model.ErrInvalidClassCount)
	}

	counts := make([]float64, classes)
	sums := make([][]float64, classes)
	for k := range sums {
		sums[k] = make([]float64, cols)
	}
	squares := make([]float64, cols)

	// zero entries contribute to neither sums nor squares, so only non-zeros are visited
	for i, row := range x.Rows {
		k := y[i]
		if k < 0 || k >= classes {
			return nil, nil, fmt.Errorf("label %d at row %d outside [0,%d): %w", k, i, classes, model.ErrMissingClass)
		}
		counts[k]++
		for j, idx := range row.Indices {
			v := float64(row.Values[j])
			sums[k][idx] += v
			squares[idx] += v * v
		}
	}

	f = make([]float64, cols)
	p = make([]float64, cols)
	if n <= classes {
		for j := range f {
			f[j] = math.NaN()
			p[j] = math.NaN()
		}
		return f, p, nil
	}

	total := make([]float64, cols)
	for k := range sums {
		floats.Add(total, sums[k])
	}

	N := float64(n)
	dfBetween := float64(classes - 1)
	dfWithin := float64(n - classes)
	dist := distuv.F{D1: dfBetween, D2: dfWithin}

	for j := 0; j < cols; j++ {
		correction := total[j] * total[j] / N
		ssTotal := squares[j] - correction
		ssBetween := -correction
		for k := range sums {
			if counts[k] > 0 {
				ssBetween += sums[k][j] * sums[k][j] / counts[k]
			}
		}
		ssWithin := ssTotal - ssBetween
		// guard against cancellation on near constant columns
		if ssWithin < 1e-12*math.Max(1, squares[j]) {
			ssWithin = 0
		}
		if ssBetween < 0 {
			ssBetween = 0
		}
		switch {
		case ssWithin == 0 && ssBetween == 0:
			f[j] = math.NaN()
			p[j] = math.NaN()
		case ssWithin == 0:
			f[j] = math.Inf(1)
			p[j] = 0
		default:
			f[j] = (ssBetween / dfBetween) / (ssWithin / dfWithin)
			p[j] = 1 - dist.CDF(f[j])
		}
	}
	return f, p, nil
}

// TopK returns the indices of the k highest scores in ascending index order.
// NaN scores rank below every number and ties are broken by the lower index.
func TopK(scores []float64, k int) []int {
	if k > len(scores) {
		k = len(scores)
	}
	if k <= 0 {
		return []int{}
	}
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	ranked := make([]float64, len(scores))
	for i, s := range scores {
		if math.IsNaN(s) {
			s = math.Inf(-1)
		}
		ranked[i] = s
	}
	sortByScore(order, ranked)
	selected := order[:k]
	sortInts(selected)
	return selected
}
