package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

type CircuitState int

const (
	Closed CircuitState = iota
	// Open rejects calls until RecoveryTimeout has passed.
	Open
	// HalfOpen lets one probe call through at a time.
	HalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var ErrCircuitOpen = errors.New("circuit breaker is open")

type CircuitBreaker interface {
	// Call runs fn unless the circuit is open, and records its outcome.
	Call(fn func() error) error
	State() CircuitState
	Metrics() Metrics
	Reset()
}

type Config struct {
	// FailureThreshold consecutive failures open a closed circuit.
	FailureThreshold int
	RecoveryTimeout  time.Duration
	// SuccessThreshold successful probes close a half-open circuit.
	SuccessThreshold int

	// OnStateChange is invoked outside the breaker lock.
	OnStateChange func(from, to CircuitState)
}

func DefaultConfig() *Config {
	return &Config{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
		SuccessThreshold: 2,
	}
}

type Metrics struct {
	State        CircuitState
	FailureCount int
	SuccessCount int
	LastFailure  time.Time
	NextAttempt  time.Time
}

type circuitBreaker struct {
	config *Config
	now    func() time.Time

	mu          sync.Mutex
	state       CircuitState
	failures    int
	successes   int
	probing     bool
	lastFailure time.Time
	nextAttempt time.Time
}

// NewCircuitBreaker applies DefaultConfig when config is nil.
func NewCircuitBreaker(config *Config) CircuitBreaker {
	if config == nil {
		config = DefaultConfig()
	}
	return &circuitBreaker{config: config, now: time.Now}
}

// errPanicked records a call whose fn panicked; the panic itself propagates.
var errPanicked = errors.New("circuit breaker call panicked")

func (cb *circuitBreaker) Call(fn func() error) error {
	if !cb.acquire() {
		return ErrCircuitOpen
	}

	// A panicking fn counts as a failure, so the half-open trial slot is
	// always handed back.
	done := false
	defer func() {
		if !done {
			cb.release(errPanicked)
		}
	}()

	// fn runs without the lock held.
	err := fn()
	done = true
	cb.release(err)
	return err
}

// acquire decides whether a call may run, moving Open to HalfOpen once the
// recovery timeout has passed.
func (cb *circuitBreaker) acquire() bool {
	cb.mu.Lock()
	from := cb.state

	if cb.state == Open && !cb.now().Before(cb.nextAttempt) {
		cb.state = HalfOpen
		cb.successes = 0
	}

	allowed := cb.state == Closed || (cb.state == HalfOpen && !cb.probing)
	if allowed && cb.state == HalfOpen {
		cb.probing = true
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
	return allowed
}

func (cb *circuitBreaker) release(err error) {
	cb.mu.Lock()
	from := cb.state
	if cb.state == HalfOpen {
		cb.probing = false
	}

	if err != nil {
		cb.onFailure()
	} else {
		cb.onSuccess()
	}
	to := cb.state
	cb.mu.Unlock()

	cb.notify(from, to)
}

func (cb *circuitBreaker) onFailure() {
	cb.failures++
	cb.lastFailure = cb.now()

	if cb.state == HalfOpen || cb.failures >= cb.config.FailureThreshold {
		cb.trip()
	}
}

func (cb *circuitBreaker) onSuccess() {
	cb.failures = 0
	if cb.state != HalfOpen {
		return
	}

	cb.successes++
	if cb.successes >= cb.config.SuccessThreshold {
		cb.state = Closed
		cb.successes = 0
	}
}

func (cb *circuitBreaker) trip() {
	cb.state = Open
	cb.successes = 0
	cb.nextAttempt = cb.now().Add(cb.config.RecoveryTimeout)
}

func (cb *circuitBreaker) notify(from, to CircuitState) {
	if from != to && cb.config.OnStateChange != nil {
		cb.config.OnStateChange(from, to)
	}
}

func (cb *circuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *circuitBreaker) Reset() {
	cb.mu.Lock()
	from := cb.state
	cb.state = Closed
	cb.failures = 0
	cb.successes = 0
	cb.probing = false
	cb.mu.Unlock()

	cb.notify(from, Closed)
}

func (cb *circuitBreaker) Metrics() Metrics {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return Metrics{
		State:        cb.state,
		FailureCount: cb.failures,
		SuccessCount: cb.successes,
		LastFailure:  cb.lastFailure,
		NextAttempt:  cb.nextAttempt,
	}
}
