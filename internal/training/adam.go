package training

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// adam is an adaptive first/second-moment optimizer. Moment buffers live here,
// one pair per weight matrix, so optimizer state is scoped to the run that
// owns it and parallel runs cannot interfere.
type adam struct {
	lr, beta1, beta2, eps float64
	t                     int
	m, v                  []*mat.Dense
}

func newAdam(lr, beta1, beta2, eps float64, params []*mat.Dense) *adam {
	a := &adam{lr: lr, beta1: beta1, beta2: beta2, eps: eps}
	for _, p := range params {
		rows, cols := p.Dims()
		a.m = append(a.m, mat.NewDense(rows, cols, nil))
		a.v = append(a.v, mat.NewDense(rows, cols, nil))
	}
	return a
}

// step applies one bias-corrected Adam update in place. grads must be
// positionally aligned with the params passed to newAdam.
func (a *adam) step(params, grads []*mat.Dense) {
	a.t++
	c1 := 1 - math.Pow(a.beta1, float64(a.t))
	c2 := 1 - math.Pow(a.beta2, float64(a.t))
	for k, p := range params {
		g := grads[k]
		m, v := a.m[k], a.v[k]
		rows, cols := p.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				gij := g.At(i, j)
				mij := a.beta1*m.At(i, j) + (1-a.beta1)*gij
				vij := a.beta2*v.At(i, j) + (1-a.beta2)*gij*gij
				m.Set(i, j, mij)
				v.Set(i, j, vij)
				p.Set(i, j, p.At(i, j)-a.lr*(mij/c1)/(math.Sqrt(vij/c2)+a.eps))
			}
		}
	}
}
