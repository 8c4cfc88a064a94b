package broker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"github.com/sony/gobreaker"

	"github.com/dwallet-labs/dwallet-network-sub008/module"
)

// ErrCircuitOpen is returned while the breaker rejects submissions after
// repeated consensus failures.
var ErrCircuitOpen = errors.New("consensus submission circuit is open")

type Config struct {
	// RetryBase is the initial delay between two attempts; it doubles on
	// every retry.
	RetryBase time.Duration `mapstructure:"retry-base"`
	// RetryMax is the number of retries after the first attempt.
	RetryMax uint64 `mapstructure:"retry-max"`
	// BreakerFailures is the number of consecutive failed attempts that
	// opens the circuit.
	BreakerFailures uint32 `mapstructure:"breaker-failures"`
	// BreakerTimeout is how long the circuit stays open before a probe
	// submission is let through.
	BreakerTimeout time.Duration `mapstructure:"breaker-timeout"`
}

func DefaultConfig() Config {
	return Config{
		RetryBase:       100 * time.Millisecond,
		RetryMax:        5,
		BreakerFailures: 10,
		BreakerTimeout:  10 * time.Second,
	}
}

// Broker submits payloads to consensus with exponential retry. Consecutive
// failures open a circuit breaker, after which submissions fail fast until the
// breaker's timeout elapses.
type Broker struct {
	log       zerolog.Logger
	submitter module.ConsensusSubmitter
	metrics   module.MPCMetrics
	config    Config
	breaker   *gobreaker.CircuitBreaker
}

var _ module.ConsensusSubmitter = (*Broker)(nil)

func New(log zerolog.Logger, submitter module.ConsensusSubmitter, metrics module.MPCMetrics, config Config) *Broker {
	b := &Broker{
		log:       log.With().Str("component", "consensus_broker").Logger(),
		submitter: submitter,
		metrics:   metrics,
		config:    config,
	}
	b.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "consensus",
		MaxRequests: 1,
		Timeout:     config.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.log.Warn().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("consensus circuit breaker changed state")
		},
	})
	return b
}

// SubmitToConsensus submits the payloads, retrying failed attempts until the
// retry budget is spent, the circuit opens, or ctx is cancelled.
func (b *Broker) SubmitToConsensus(ctx context.Context, payloads [][]byte) error {
	if len(payloads) == 0 {
		return nil
	}

	expRetry, err := retry.NewExponential(b.config.RetryBase)
	if err != nil {
		return fmt.Errorf("could not create retry mechanism: %w", err)
	}
	maxedExpRetry := retry.WithMaxRetries(b.config.RetryMax, expRetry)

	attempts := 0
	err = retry.Do(ctx, maxedExpRetry, func(ctx context.Context) error {
		attempts++
		_, err := b.breaker.Execute(func() (interface{}, error) {
			return nil, b.submitter.SubmitToConsensus(ctx, payloads)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("%s: %w", err, ErrCircuitOpen)
		}
		if err != nil {
			b.log.Error().Err(err).Int("attempt", attempts).Msg("error submitting to consensus, retrying")
		}
		return retry.RetryableError(err)
	})
	if err != nil {
		b.metrics.ConsensusSubmissionFailed()
		return fmt.Errorf("could not submit %d payloads after %d attempts: %w", len(payloads), attempts, err)
	}
	return nil
}

// State returns the current state of the circuit breaker.
func (b *Broker) State() gobreaker.State {
	return b.breaker.State()
}
