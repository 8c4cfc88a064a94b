package broker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	modulemock "github.com/dwallet-labs/dwallet-network-sub008/module/mock"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/unittest"
)

func testConfig() Config {
	return Config{
		RetryBase:       time.Millisecond,
		RetryMax:        3,
		BreakerFailures: 10,
		BreakerTimeout:  time.Minute,
	}
}

func TestSubmit_Success(t *testing.T) {
	submitter := modulemock.NewConsensusSubmitter(t)
	payloads := [][]byte{[]byte("a"), []byte("b")}
	submitter.On("SubmitToConsensus", mock.Anything, payloads).Return(nil).Once()

	b := New(unittest.Logger(), submitter, metrics.NewNoopCollector(), testConfig())
	require.NoError(t, b.SubmitToConsensus(context.Background(), payloads))
}

func TestSubmit_Empty(t *testing.T) {
	submitter := modulemock.NewConsensusSubmitter(t)
	b := New(unittest.Logger(), submitter, metrics.NewNoopCollector(), testConfig())
	require.NoError(t, b.SubmitToConsensus(context.Background(), nil))
	submitter.AssertNotCalled(t, "SubmitToConsensus", mock.Anything, mock.Anything)
}

// transient failures are retried until a submission succeeds
func TestSubmit_RetriesTransientFailures(t *testing.T) {
	submitter := modulemock.NewConsensusSubmitter(t)
	submitter.On("SubmitToConsensus", mock.Anything, mock.Anything).Return(errors.New("unavailable")).Twice()
	submitter.On("SubmitToConsensus", mock.Anything, mock.Anything).Return(nil).Once()

	b := New(unittest.Logger(), submitter, metrics.NewNoopCollector(), testConfig())
	require.NoError(t, b.SubmitToConsensus(context.Background(), [][]byte{[]byte("a")}))
	submitter.AssertNumberOfCalls(t, "SubmitToConsensus", 3)
}

func TestSubmit_RetriesExhausted(t *testing.T) {
	submitter := modulemock.NewConsensusSubmitter(t)
	cause := errors.New("unavailable")
	submitter.On("SubmitToConsensus", mock.Anything, mock.Anything).Return(cause)

	b := New(unittest.Logger(), submitter, metrics.NewNoopCollector(), testConfig())
	err := b.SubmitToConsensus(context.Background(), [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, cause))
	// the first attempt plus RetryMax retries
	submitter.AssertNumberOfCalls(t, "SubmitToConsensus", 4)
}

// once the breaker trips, submissions fail fast without reaching consensus
func TestSubmit_CircuitOpens(t *testing.T) {
	submitter := modulemock.NewConsensusSubmitter(t)
	submitter.On("SubmitToConsensus", mock.Anything, mock.Anything).Return(errors.New("unavailable"))

	config := testConfig()
	config.BreakerFailures = 2
	b := New(unittest.Logger(), submitter, metrics.NewNoopCollector(), config)

	err := b.SubmitToConsensus(context.Background(), [][]byte{[]byte("a")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	assert.Equal(t, gobreaker.StateOpen, b.State())
	submitter.AssertNumberOfCalls(t, "SubmitToConsensus", 2)

	err = b.SubmitToConsensus(context.Background(), [][]byte{[]byte("b")})
	assert.True(t, errors.Is(err, ErrCircuitOpen))
	submitter.AssertNumberOfCalls(t, "SubmitToConsensus", 2)
}

func TestSubmit_ContextCancelled(t *testing.T) {
	submitter := modulemock.NewConsensusSubmitter(t)
	submitter.On("SubmitToConsensus", mock.Anything, mock.Anything).Return(errors.New("unavailable")).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	config := testConfig()
	config.RetryBase = time.Hour
	b := New(unittest.Logger(), submitter, metrics.NewNoopCollector(), config)

	unittest.RequireReturnsBefore(t, func() {
		err := b.SubmitToConsensus(ctx, [][]byte{[]byte("a")})
		assert.True(t, errors.Is(err, context.Canceled))
	}, time.Second)
}
