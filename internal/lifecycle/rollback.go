package lifecycle

import "go.uber.org/zap"

type undoStep struct {
	what string
	fn   func() error
}

// rollback undoes the artifacts of a failed create in reverse order.
type rollback struct {
	steps  []undoStep
	logger *zap.Logger
}

func (r *rollback) add(what string, fn func() error) {
	r.steps = append(r.steps, undoStep{what: what, fn: fn})
}

// run undoes every registered step. Failures are logged and the remaining
// steps still run.
func (r *rollback) run() {
	for i := len(r.steps) - 1; i >= 0; i-- {
		s := r.steps[i]
		if err := s.fn(); err != nil {
			r.logger.Warn("rollback step failed", zap.String("step", s.what), zap.Error(err))
			continue
		}
		r.logger.Debug("rolled back", zap.String("step", s.what))
	}
	r.steps = nil
}
