package mpc

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/broker"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/malicious"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/verifier"
)

// Config is the configuration of the MPC engine.
type Config struct {
	// MaxActiveSessions bounds the sessions in FirstExecution or Active.
	MaxActiveSessions int `mapstructure:"max-active-sessions" validate:"gt=0"`
	// MaxFaultyPercent is the share of stake assumed Byzantine; it sets the
	// reporter stake needed to confirm an accusation.
	MaxFaultyPercent uint64 `mapstructure:"max-faulty-percent" validate:"lte=33"`
	// WorkerPoolSize bounds the advance calls running concurrently.
	WorkerPoolSize int `mapstructure:"worker-pool-size" validate:"gt=0"`
	// TickInterval is the period of the scheduling tick.
	TickInterval time.Duration `mapstructure:"tick-interval" validate:"gt=0"`
	// InboundQueueCapacity bounds the messages waiting for the loop.
	InboundQueueCapacity int `mapstructure:"inbound-queue-capacity" validate:"gt=0"`
	// OutboundQueueCapacity bounds the payloads waiting for submission.
	OutboundQueueCapacity int `mapstructure:"outbound-queue-capacity" validate:"gt=0"`
	// OutOfOrderSessions bounds the unknown sessions whose messages are held
	// until the creation event arrives.
	OutOfOrderSessions int `mapstructure:"out-of-order-sessions" validate:"gt=0"`
	// OutOfOrderMessagesPerSession bounds the messages held per unknown session.
	OutOfOrderMessagesPerSession int `mapstructure:"out-of-order-messages-per-session" validate:"gt=0"`
	// CompletedSessions is the number of persisted session ids remembered to
	// drop late messages and duplicate creation events.
	CompletedSessions int `mapstructure:"completed-sessions" validate:"gt=0"`
	// OutputCacheSize is the number of persisted output ids the verifier
	// keeps in memory.
	OutputCacheSize int `mapstructure:"output-cache-size" validate:"gt=0"`

	Broker broker.Config `mapstructure:"broker"`
}

func DefaultConfig() Config {
	return Config{
		MaxActiveSessions:            1000,
		MaxFaultyPercent:             malicious.MaxFaultyPercent,
		WorkerPoolSize:               8,
		TickInterval:                 100 * time.Millisecond,
		InboundQueueCapacity:         100_000,
		OutboundQueueCapacity:        100_000,
		OutOfOrderSessions:           1000,
		OutOfOrderMessagesPerSession: 256,
		CompletedSessions:            10_000,
		OutputCacheSize:              verifier.DefaultPersistedCacheSize,
		Broker:                       broker.DefaultConfig(),
	}
}

var validate = validator.New()

// Validate checks the bounds of every field.
func (c Config) Validate() error {
	return validate.Struct(c)
}
