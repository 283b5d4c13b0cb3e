package model

// Row is a sparse row of a feature matrix.
// Indices are strictly increasing.
type Row struct {
	Indices []int     `json:"indices"`
	Values  []float32 `json:"values"`
}

// Len returns the number of non-zero entries of the row.
func (r Row) Len() int {
	return len(r.Indices)
}

// Matrix is a row-sparse feature matrix with a fixed number of columns.
type Matrix struct {
	Rows []Row `json:"rows"`
	Cols int   `json:"cols"`
}

// NewMatrix creates an empty matrix with the given dimensions.
func NewMatrix(rows, cols int) Matrix {
	return Matrix{
		Rows: make([]Row, rows),
		Cols: cols,
	}
}

// Dims returns the number of rows and columns.
func (m Matrix) Dims() (int, int) {
	return len(m.Rows), m.Cols
}

// Select returns the sub-matrix made of the given rows.
func (m Matrix) Select(rows []int) Matrix {
	sub := NewMatrix(len(rows), m.Cols)
	for i, r := range rows {
		sub.Rows[i] = m.Rows[r]
	}
	return sub
}

