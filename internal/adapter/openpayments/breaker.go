package openpayments

import (
	"errors"
	"sync"
	"time"

	"github.com/isaoPastelin/Interledger-Hackathon/internal/core/ports"
	"github.com/isaoPastelin/Interledger-Hackathon/internal/metrics"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// Breakers hands out one circuit breaker per remote host, shared by every
// client so a failing server trips once for all accounts.
type Breakers struct {
	mu          sync.Mutex
	byHost      map[string]*gobreaker.CircuitBreaker
	maxFailures uint32
	timeout     time.Duration
	log         zerolog.Logger
}

// NewBreakers creates a breaker set. A breaker opens after maxFailures
// consecutive failures and half-opens after timeout.
func NewBreakers(maxFailures uint32, timeout time.Duration, log zerolog.Logger) *Breakers {
	if maxFailures == 0 {
		maxFailures = 5
	}
	return &Breakers{
		byHost:      make(map[string]*gobreaker.CircuitBreaker),
		maxFailures: maxFailures,
		timeout:     timeout,
		log:         log,
	}
}

// For returns the breaker guarding host.
func (b *Breakers) For(host string) *gobreaker.CircuitBreaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if cb, ok := b.byHost[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     b.timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= b.maxFailures
		},
		// 4xx answers mean the server is healthy and said no.
		IsSuccessful: func(err error) bool {
			var remote *ports.RemoteError
			if errors.As(err, &remote) {
				return remote.StatusCode < 500
			}
			return err == nil
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.log.Warn().
				Str("host", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
			metrics.BreakerState.WithLabelValues(name).Set(float64(to))
		},
	})
	b.byHost[host] = cb
	return cb
}
