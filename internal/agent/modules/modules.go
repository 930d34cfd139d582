// Package modules implements the nine cooperative decision modules:
// Examiner, Hoarder, Navigator, Interactor, Idler, YesNo, YouHaveTo,
// Darkness, and Restart. Each implements internal/agent.Module as an
// explicit two-state machine (awaiting-action / awaiting-response)
// rather than a coroutine, so control can be suspended and resumed
// across arbiter ticks without goroutines.
package modules

import (
	"github.com/nail-agent/nail/internal/action"
	"github.com/nail-agent/nail/internal/validity"
)

// validOrClassify estimates p(act succeeded) from response. If act
// implements action.Validatable, its own deterministic judgement is
// used when it reports ok; otherwise (or when act isn't Validatable)
// the learned validity classifier is consulted.
func validOrClassify(c validity.Classifier, act action.Action, response string, onUnrecognized func(word string)) (float64, error) {
	if v, ok := act.(action.Validatable); ok {
		if p, ok := v.Validate(response); ok {
			return p, nil
		}
	}
	return validity.ActionValid(c, act.Text(), response, onUnrecognized)
}

// recorder implements the succ_cnt/fail_cnt bookkeeping shared by
// every module, via internal/agent.Module.Record.
type recorder struct {
	succCnt int
	failCnt int
}

func (r *recorder) Record(success bool) {
	if success {
		r.succCnt++
	} else {
		r.failCnt++
	}
}

// SuccessCount returns the number of actions this module has recorded
// as valid.
func (r *recorder) SuccessCount() int { return r.succCnt }

// FailureCount returns the number of actions this module has recorded
// as invalid.
func (r *recorder) FailureCount() int { return r.failCnt }
