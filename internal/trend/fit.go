package trend

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Degree is the polynomial degree fitted to score-over-week data.
const Degree = 2

// ErrNoObservations is returned when Fit is called with no data points.
var ErrNoObservations = errors.New("no observations to fit")

// ErrIllConditioned reports that the least-squares system was rank
// deficient (fewer than three distinct weeks). The coefficients returned
// alongside it are the minimum-norm answer.
type ErrIllConditioned struct {
	Err error
}

func (e *ErrIllConditioned) Error() string {
	return fmt.Sprintf("ill-conditioned fit: %v", e.Err)
}

func (e *ErrIllConditioned) Unwrap() error { return e.Err }

// Observation is one weekly test score.
type Observation struct {
	Week  int
	Score float64
}

// Curve holds the coefficients of score = A0 + A1*week + A2*week^2.
type Curve struct {
	A0 float64
	A1 float64
	A2 float64
}

// At evaluates the curve at week w.
func (c Curve) At(w float64) float64 {
	return c.A0 + c.A1*w + c.A2*w*w
}

// Slope returns the first derivative of the curve at week w.
func (c Curve) Slope(w float64) float64 {
	return c.A1 + 2*c.A2*w
}

// Sample returns n evenly spaced points on the curve between from and to,
// inclusive. n < 2 yields the single point at from.
func (c Curve) Sample(from, to float64, n int) (xs, ys []float64) {
	if n < 2 {
		return []float64{from}, []float64{c.At(from)}
	}
	xs = make([]float64, n)
	ys = make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := 0; i < n; i++ {
		x := from + step*float64(i)
		if i == n-1 {
			x = to
		}
		xs[i] = x
		ys[i] = c.At(x)
	}
	return xs, ys
}

// Fit computes the least-squares quadratic through obs.
//
// The week and week² columns are centered and the intercept recovered from
// the means, so it is never shrunk. With fewer than three distinct weeks
// the centered system is rank deficient: the minimum-norm solution is
// returned together with *ErrIllConditioned. A single distinct week gives
// a flat curve at the mean score.
func Fit(obs []Observation) (Curve, error) {
	if len(obs) == 0 {
		return Curve{}, ErrNoObservations
	}

	n := float64(len(obs))
	var meanW, meanW2, meanY float64
	for _, o := range obs {
		w := float64(o.Week)
		meanW += w / n
		meanW2 += w * w / n
		meanY += o.Score / n
	}

	x := mat.NewDense(len(obs), Degree, nil)
	y := mat.NewVecDense(len(obs), nil)
	for i, o := range obs {
		w := float64(o.Week)
		x.Set(i, 0, w-meanW)
		x.Set(i, 1, w*w-meanW2)
		y.SetVec(i, o.Score-meanY)
	}

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return Curve{A0: meanY}, &ErrIllConditioned{Err: errors.New("singular value decomposition failed")}
	}

	var beta [Degree]float64
	rank := svd.Rank(rankTolerance * n)
	if rank > 0 {
		var sol mat.VecDense
		svd.SolveVecTo(&sol, y, rank)
		beta[0], beta[1] = sol.AtVec(0), sol.AtVec(1)
	}

	c := Curve{
		A0: meanY - beta[0]*meanW - beta[1]*meanW2,
		A1: beta[0],
		A2: beta[1],
	}
	if rank < Degree {
		return c, &ErrIllConditioned{Err: fmt.Errorf("design rank %d of %d", rank, Degree)}
	}
	return c, nil
}

// rankTolerance scales the largest singular value; smaller ones are
// treated as zero.
const rankTolerance = 1e-13

// MaxWeek returns the largest week present in obs, or 0 if obs is empty.
func MaxWeek(obs []Observation) int {
	if len(obs) == 0 {
		return 0
	}
	m := obs[0].Week
	for _, o := range obs[1:] {
		if o.Week > m {
			m = o.Week
		}
	}
	return m
}

// MinWeek returns the smallest week present in obs, or 0 if obs is empty.
func MinWeek(obs []Observation) int {
	if len(obs) == 0 {
		return 0
	}
	m := obs[0].Week
	for _, o := range obs[1:] {
		if o.Week < m {
			m = o.Week
		}
	}
	return m
}

// Scores returns the score column of obs in order.
func Scores(obs []Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Score
	}
	return out
}
