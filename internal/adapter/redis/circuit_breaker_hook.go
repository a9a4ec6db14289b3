package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/pscheid92/notecanvas/internal/adapter/metrics"
	goredis "github.com/redis/go-redis/v9"
)

// CircuitBreakerHook fails Redis calls fast while Redis is unhealthy. There is
// no cached fallback: a session lookup that cannot reach Redis fails and the
// request is treated as unauthenticated.
type CircuitBreakerHook struct {
	cb circuitbreaker.CircuitBreaker[any]
}

var _ goredis.Hook = (*CircuitBreakerHook)(nil)

// NewCircuitBreakerHook opens after a 60% failure rate over at least 5
// requests in a 10s window, half-opens after 30s and closes on the first
// success. m may be nil.
func NewCircuitBreakerHook(m *metrics.RedisMetrics) *CircuitBreakerHook {
	cb := circuitbreaker.NewBuilder[any]().
		WithFailureRateThreshold(0.6, 5, 10*time.Second).
		WithDelay(30 * time.Second).
		WithSuccessThreshold(1).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			slog.Warn("Circuit breaker state changed",
				"component", "redis",
				"from", e.OldState.String(),
				"to", e.NewState.String(),
			)
			if m != nil {
				m.CircuitStateChanges.WithLabelValues(e.NewState.String()).Inc()
				m.CircuitBreakerState.Set(stateToFloat(e.NewState))
			}
		}).
		Build()

	return &CircuitBreakerHook{cb: cb}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (h *CircuitBreakerHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		if !h.cb.TryAcquirePermit() {
			return nil, fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}
		conn, err := next(ctx, network, addr)
		if err != nil {
			h.cb.RecordError(err)
			return nil, err
		}
		h.cb.RecordSuccess()
		return conn, nil
	}
}

// goredis.Nil is a miss, not a failure.
func (h *CircuitBreakerHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			err := fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
			cmd.SetErr(err)
			return err
		}

		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
		} else {
			h.cb.RecordSuccess()
		}
		return err
	}
}

func (h *CircuitBreakerHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		if !h.cb.TryAcquirePermit() {
			return fmt.Errorf("redis circuit breaker open: %w", circuitbreaker.ErrOpen)
		}

		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, goredis.Nil) {
			h.cb.RecordError(err)
			return err
		}
		h.cb.RecordSuccess()
		return err
	}
}

// State reports the breaker state, for health checks and tests.
func (h *CircuitBreakerHook) State() circuitbreaker.State {
	return h.cb.State()
}
