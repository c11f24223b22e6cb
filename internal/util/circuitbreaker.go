package util

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// CircuitState represents the state of the circuit breaker
type CircuitState string

const (
	CircuitStateClosed   CircuitState = "CLOSED"
	CircuitStateOpen     CircuitState = "OPEN"
	CircuitStateHalfOpen CircuitState = "HALF_OPEN"
)

func (s CircuitState) String() string {
	return string(s)
}

// CircuitBreaker stops calls to an upstream after failureThreshold
// consecutive failures. Once resetTimeout has elapsed a single trial call is
// let through (HALF_OPEN); its outcome closes or reopens the circuit. Other
// callers are refused while the trial is in flight.
type CircuitBreaker struct {
	name             string
	state            CircuitState
	trialInFlight    bool
	failureCount     int
	failureThreshold int
	resetTimeout     time.Duration
	openedUntil      time.Time
	now              func() time.Time
	logger           *zap.Logger
	mu               sync.Mutex
}

func NewCircuitBreaker(name string, failureThreshold int, resetTimeout time.Duration, logger *zap.Logger) *CircuitBreaker {
	if failureThreshold <= 0 {
		failureThreshold = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CircuitBreaker{
		name:             name,
		state:            CircuitStateClosed,
		failureThreshold: failureThreshold,
		resetTimeout:     resetTimeout,
		now:              time.Now,
		logger:           logger,
	}
}

func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshLocked()
	return cb.state
}

// CanExecute reports whether a call may go through right now. In HALF_OPEN
// it admits one caller, which must then report RecordSuccess, RecordFailure
// or RecordCancelled.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshLocked()
	switch cb.state {
	case CircuitStateOpen:
		return false
	case CircuitStateHalfOpen:
		if cb.trialInFlight {
			return false
		}
		cb.trialInFlight = true
		return true
	default:
		return true
	}
}

func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trialInFlight = false
	if cb.state != CircuitStateClosed {
		cb.logger.Info("Circuit Breaker: upstream recovered", zap.String("circuit", cb.name))
		cb.transitionTo(CircuitStateClosed)
	}
	cb.failureCount = 0
}

func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.refreshLocked()
	cb.trialInFlight = false
	cb.failureCount++

	cb.logger.Warn("Circuit Breaker: failure recorded",
		zap.String("circuit", cb.name),
		zap.Int("count", cb.failureCount),
		zap.Int("threshold", cb.failureThreshold),
	)

	if cb.state == CircuitStateHalfOpen || cb.failureCount >= cb.failureThreshold {
		cb.openedUntil = cb.now().Add(cb.resetTimeout)
		cb.transitionTo(CircuitStateOpen)
	}
}

// RecordCancelled reports a call abandoned by its caller. It says nothing
// about the upstream, so counts are left alone and a HALF_OPEN trial slot is
// freed for the next caller.
func (cb *CircuitBreaker) RecordCancelled() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.trialInFlight = false
}

// must be called with cb.mu held
func (cb *CircuitBreaker) refreshLocked() {
	if cb.state == CircuitStateOpen && !cb.now().Before(cb.openedUntil) {
		cb.trialInFlight = false
		cb.transitionTo(CircuitStateHalfOpen)
	}
}

// must be called with cb.mu held
func (cb *CircuitBreaker) transitionTo(newState CircuitState) {
	oldState := cb.state
	cb.state = newState

	fields := []zap.Field{
		zap.String("circuit", cb.name),
		zap.String("from", oldState.String()),
		zap.String("to", newState.String()),
		zap.Int("failure_count", cb.failureCount),
	}
	if newState == CircuitStateOpen {
		fields = append(fields, zap.Time("open_until", cb.openedUntil))
	}
	cb.logger.Info("Circuit Breaker: state transition", fields...)
}
