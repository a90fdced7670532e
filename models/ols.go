package models

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// singularTol is the smallest relative magnitude of an R diagonal element before the design matrix
// is treated as rank deficient
const singularTol = 1e-10

type OLSOptions struct {
	FitIntercept bool
}

func NewDefaultOLSOptions() *OLSOptions {
	return &OLSOptions{
		FitIntercept: true,
	}
}

// OLSRegression computes ordinary least squares for one or more targets using QR factorization.
// Each target column gets its own coefficient vector solved against the same factorization.
type OLSRegression struct {
	opt       *OLSOptions
	inSize    int
	outSize   int
	coef      [][]float64 // [output][feature]
	intercept []float64
}

func NewOLSRegression(opt *OLSOptions) (*OLSRegression, error) {
	if opt == nil {
		opt = NewDefaultOLSOptions()
	}
	return &OLSRegression{
		opt: opt,
	}, nil
}

func (o *OLSRegression) designMatrix(x [][]float64) *mat.Dense {
	m := len(x)
	n := len(x[0])
	offset := 0
	if o.opt.FitIntercept {
		offset = 1
	}
	d := mat.NewDense(m, n+offset, nil)
	for i, row := range x {
		if offset == 1 {
			d.Set(i, 0, 1.0)
		}
		for j, v := range row {
			d.Set(i, j+offset, v)
		}
	}
	return d
}

// Fit solves for coefficients mapping each row of x onto the matching row of y
func (o *OLSRegression) Fit(x, y [][]float64) error {
	if o.opt == nil {
		return ErrNoOptions
	}
	if len(x) == 0 || len(y) == 0 {
		return ErrNoTrainingData
	}
	m := len(x)
	if len(y) != m {
		return fmt.Errorf("training data has %d rows and target has %d row, %w", m, len(y), ErrTargetLenMismatch)
	}
	inSize, outSize := len(x[0]), len(y[0])
	for i := range x {
		if len(x[i]) != inSize {
			return fmt.Errorf("row %d has %d features, expected %d, %w", i, len(x[i]), inSize, ErrFeatureLenMismatch)
		}
		if len(y[i]) != outSize {
			return fmt.Errorf("row %d has %d targets, expected %d, %w", i, len(y[i]), outSize, ErrTargetLenMismatch)
		}
	}

	xMx := o.designMatrix(x)
	_, n := xMx.Dims()
	if m < n {
		return fmt.Errorf("%d rows for %d coefficients, %w", m, n, ErrUnderdetermined)
	}

	yMx := mat.NewDense(m, outSize, nil)
	for i, row := range y {
		yMx.SetRow(i, row)
	}

	qr := new(mat.QR)
	qr.Factorize(xMx)

	q := new(mat.Dense)
	r := new(mat.Dense)
	qr.QTo(q)
	qr.RTo(r)

	var maxDiag float64
	for i := 0; i < n; i++ {
		maxDiag = math.Max(maxDiag, math.Abs(r.At(i, i)))
	}
	for i := 0; i < n; i++ {
		if math.Abs(r.At(i, i)) <= singularTol*math.Max(maxDiag, 1) {
			return fmt.Errorf("column %d of design matrix, %w", i, ErrSingular)
		}
	}

	qy := new(mat.Dense)
	qy.Mul(q.T(), yMx)

	coef := make([][]float64, outSize)
	intercept := make([]float64, outSize)
	for k := 0; k < outSize; k++ {
		c := make([]float64, n)
		for i := n - 1; i >= 0; i-- {
			c[i] = qy.At(i, k)
			for j := i + 1; j < n; j++ {
				c[i] -= c[j] * r.At(i, j)
			}
			c[i] /= r.At(i, i)
		}
		if o.opt.FitIntercept {
			intercept[k] = c[0]
			c = c[1:]
		}
		coef[k] = c
	}

	o.inSize = inSize
	o.outSize = outSize
	o.coef = coef
	o.intercept = intercept
	return nil
}

// Predict returns the fitted outputs for a single input row
func (o *OLSRegression) Predict(x []float64) ([]float64, error) {
	if o.opt == nil {
		return nil, ErrNoOptions
	}
	if o.coef == nil {
		return nil, ErrReleased
	}
	if len(x) != o.inSize {
		return nil, fmt.Errorf("got %d features, but expected %d, %w", len(x), o.inSize, ErrFeatureLenMismatch)
	}

	res := make([]float64, o.outSize)
	for k := range res {
		res[k] = o.intercept[k] + floats.Dot(o.coef[k], x)
	}
	return res, nil
}

// Score returns the coefficient of determination of the first output
func (o *OLSRegression) Score(x, y [][]float64) (float64, error) {
	if len(x) != len(y) {
		return 0.0, fmt.Errorf("design matrix has %d rows and target has %d rows, %w", len(x), len(y), ErrTargetLenMismatch)
	}
	pred := make([]float64, len(x))
	obs := make([]float64, len(y))
	for i := range x {
		res, err := o.Predict(x[i])
		if err != nil {
			return 0.0, err
		}
		pred[i] = res[0]
		obs[i] = y[i][0]
	}
	return stat.RSquaredFrom(pred, obs, nil), nil
}

func (o *OLSRegression) InSize() int {
	return o.inSize
}

func (o *OLSRegression) OutSize() int {
	return o.outSize
}

// Intercept returns a copy of the intercept of every output
func (o *OLSRegression) Intercept() []float64 {
	c := make([]float64, len(o.intercept))
	copy(c, o.intercept)
	return c
}

// Coef returns a copy of the coefficients of output k
func (o *OLSRegression) Coef(k int) []float64 {
	c := make([]float64, len(o.coef[k]))
	copy(c, o.coef[k])
	return c
}

func (o *OLSRegression) Release() {
	o.coef = nil
	o.intercept = nil
}
