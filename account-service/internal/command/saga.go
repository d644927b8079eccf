package command

import (
	"fmt"

	"github.com/corebank/banking/account-service/internal/domain"
	"go.uber.org/zap"
)

// SagaState is a step of the account-opening saga.
type SagaState int

const (
	StateResolvingCustomer SagaState = iota
	StateCreatingAccount
	StateCreditingBalance
	StateRecordingLedger
	StateCommitted
	StateCompensating
	StateFailed
	// StateAborted ends a run that failed before any side effect.
	StateAborted
)

func (s SagaState) String() string {
	switch s {
	case StateResolvingCustomer:
		return "ResolvingCustomer"
	case StateCreatingAccount:
		return "CreatingAccount"
	case StateCreditingBalance:
		return "CreditingBalance"
	case StateRecordingLedger:
		return "RecordingLedger"
	case StateCommitted:
		return "Committed"
	case StateCompensating:
		return "Compensating"
	case StateFailed:
		return "Failed"
	case StateAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("SagaState(%d)", int(s))
	}
}

// Terminal states have no outgoing transitions.
var sagaTransitions = map[SagaState][]SagaState{
	StateResolvingCustomer: {StateCreatingAccount, StateAborted},
	StateCreatingAccount:   {StateCreditingBalance, StateAborted},
	StateCreditingBalance:  {StateRecordingLedger, StateCompensating},
	StateRecordingLedger:   {StateCommitted, StateCompensating},
	StateCompensating:      {StateFailed},
}

func canTransition(from, to SagaState) bool {
	for _, next := range sagaTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// sagaRun tracks one execution of the saga.
type sagaRun struct {
	state  SagaState
	trail  []SagaState
	logger *zap.Logger
}

func newSagaRun(logger *zap.Logger) *sagaRun {
	return &sagaRun{
		state:  StateResolvingCustomer,
		trail:  []SagaState{StateResolvingCustomer},
		logger: logger,
	}
}

func (r *sagaRun) advance(to SagaState) error {
	if !canTransition(r.state, to) {
		return fmt.Errorf("%w: saga transition %s -> %s", domain.ErrInvariantViolation, r.state, to)
	}
	r.logger.Debug("saga transition", zap.Stringer("from", r.state), zap.Stringer("to", to))
	r.state = to
	r.trail = append(r.trail, to)
	return nil
}

func (r *sagaRun) Trail() []SagaState {
	return append([]SagaState(nil), r.trail...)
}
