package math

import (
	"fmt"

	"github.com/drakos74/free-text/internal/model"
	"gonum.org/v1/gonum/mat"
)

// Fit fits the points to a polynomial of the given degree with least squares.
// The coefficients are returned in increasing power of x, c[0] + c[1]x + c[2]x^2 + ...
func Fit(x, y []float64, degree int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("%d x values for %d y values: %w", len(x), len(y), model.ErrDimensionMismatch)
	}
	if len(x) <= degree {
		return nil, fmt.Errorf("%d points cannot fit a polynomial of degree %d: %w", len(x), degree, model.ErrDimensionMismatch)
	}

	a := vandermonde(x, degree)
	b := mat.NewDense(len(y), 1, y)
	c := mat.NewDense(degree+1, 1, nil)

	qr := new(mat.QR)
	qr.Factorize(a)
	if err := qr.SolveTo(c, false, b); err != nil {
		return nil, fmt.Errorf("could not fit polynomial: %w", err)
	}
	return mat.Col(nil, 0, c), nil
}

// Slope returns the slope of the line fitted through the series, one step apart.
func Slope(y []float64) (float64, error) {
	x := make([]float64, len(y))
	for i := range x {
		x[i] = float64(i)
	}
	c, err := Fit(x, y, 1)
	if err != nil {
		return 0, err
	}
	return c[1], nil
}

func vandermonde(a []float64, degree int) *mat.Dense {
	x := mat.NewDense(len(a), degree+1, nil)
	for i := range a {
		for j, p := 0, 1.; j <= degree; j, p = j+1, p*a[i] {
			x.Set(i, j, p)
		}
	}
	return x
}
