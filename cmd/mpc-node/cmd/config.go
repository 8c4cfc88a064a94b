package cmd

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/dwallet-labs/dwallet-network-sub008/engine/mpc"
)

const (
	backendBadger = "badger"
	backendPebble = "pebble"
)

// Config is the configuration of the node, assembled from flags, MPC_*
// environment variables and the optional config file.
type Config struct {
	LogLevel  string `mapstructure:"log-level" validate:"oneof=trace debug info warn error"`
	DataDir   string `mapstructure:"datadir" validate:"required"`
	DBBackend string `mapstructure:"db-backend" validate:"oneof=badger pebble"`

	MetricsAddr   string `mapstructure:"metrics-addr"`
	Profiler      bool   `mapstructure:"profiler"`
	Epoch         uint64 `mapstructure:"epoch"`
	CommitteeSize int    `mapstructure:"committee-size" validate:"gt=0"`
	Events        string `mapstructure:"events"`
	NetworkDKG    bool   `mapstructure:"network-dkg"`

	Engine mpc.Config `mapstructure:"engine"`
}

var validate = validator.New()

// loadConfig decodes and validates the settings known to v.
func loadConfig(v *viper.Viper) (Config, error) {
	config := Config{
		Engine: mpc.DefaultConfig(),
	}
	err := v.Unmarshal(&config, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("could not decode config: %w", err)
	}
	err = validate.Struct(config)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return config, nil
}

func addStorageFlags(flags *pflag.FlagSet) {
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("datadir", "./data", "directory holding one output database per committee member")
	flags.String("db-backend", backendBadger, "output database backend (badger or pebble)")
}

func addRunFlags(flags *pflag.FlagSet) {
	flags.String("metrics-addr", ":8080", "address of the prometheus metrics server; empty disables it")
	flags.Bool("profiler", false, "serve pprof endpoints on the metrics server")
	flags.Uint64("epoch", 1, "epoch counter of the committee")
	flags.Int("committee-size", 4, "number of committee members run in this process")
	flags.String("events", "", "file of session requests, one JSON object per line")
	flags.Bool("network-dkg", true, "run the network key generation before the requested sessions")

	defaults := mpc.DefaultConfig()
	flags.Int("engine.max-active-sessions", defaults.MaxActiveSessions, "sessions allowed in FirstExecution or Active")
	flags.Uint64("engine.max-faulty-percent", defaults.MaxFaultyPercent, "share of stake assumed Byzantine, in [0, 33]")
	flags.Int("engine.worker-pool-size", defaults.WorkerPoolSize, "advance calls running concurrently")
	flags.Duration("engine.tick-interval", defaults.TickInterval, "period of the scheduling tick")
	flags.Int("engine.inbound-queue-capacity", defaults.InboundQueueCapacity, "inbound messages waiting for processing")
	flags.Int("engine.outbound-queue-capacity", defaults.OutboundQueueCapacity, "payloads waiting for submission")
	flags.Int("engine.out-of-order-sessions", defaults.OutOfOrderSessions, "unknown sessions whose messages are held")
	flags.Int("engine.out-of-order-messages-per-session", defaults.OutOfOrderMessagesPerSession, "messages held per unknown session")
	flags.Int("engine.completed-sessions", defaults.CompletedSessions, "persisted session ids remembered")
	flags.Int("engine.output-cache-size", defaults.OutputCacheSize, "persisted output ids cached in memory")
	flags.Duration("engine.broker.retry-base", defaults.Broker.RetryBase, "initial delay between submission retries")
	flags.Uint64("engine.broker.retry-max", defaults.Broker.RetryMax, "submission retries after the first attempt")
	flags.Uint32("engine.broker.breaker-failures", defaults.Broker.BreakerFailures, "consecutive failures opening the circuit")
	flags.Duration("engine.broker.breaker-timeout", defaults.Broker.BreakerTimeout, "time the circuit stays open")
}
