package parameterize

import (
	"github.com/notargets/godirectional/utils"
)

type options struct {
	rcondMin       float64
	parallelDegree int
	weightedRHS    bool
	rankCheck      bool
}

func defaultOptions() options {
	return options{
		rcondMin:       utils.RCONDMIN,
		parallelDegree: 1,
	}
}

type Option func(*options)

// WithConditionLimit sets the reciprocal condition number below which the
// factorized system is reported as singular.
func WithConditionLimit(rcondMin float64) Option {
	return func(o *options) {
		if rcondMin > 0 {
			o.rcondMin = rcondMin
		}
	}
}

// WithParallelDegree splits the per-face operator assembly over n workers.
// The assembled matrices do not depend on n.
func WithParallelDegree(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelDegree = n
		}
	}
}

// WithWeightedRHS builds the right hand side as P^T d0^T M1 gamma. The solve
// then minimizes the weighted energy for any edge weights; the default
// P^T d0^T gamma does so only for uniform weights.
func WithWeightedRHS() Option {
	return func(o *options) { o.weightedRHS = true }
}

// WithRankCheck verifies that the constraint matrix has full row rank before
// anything is assembled.
func WithRankCheck() Option {
	return func(o *options) { o.rankCheck = true }
}
