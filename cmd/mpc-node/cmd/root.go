package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	flagConfigFile string
	log            zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mpc-node",
	Short: "dWallet MPC session orchestration node",
	PersistentPreRunE: func(*cobra.Command, []string) error {
		return initLogger(viper.GetString("log-level"))
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "",
		"path to a config file; flags and MPC_* environment variables take precedence")
	addStorageFlags(rootCmd.PersistentFlags())
	_ = viper.BindPFlags(rootCmd.PersistentFlags())

	log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	bindEnv(viper.GetViper())

	if flagConfigFile == "" {
		return
	}
	viper.SetConfigFile(flagConfigFile)
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal().Err(err).Str("config", flagConfigFile).Msg("could not read config file")
	}
}

// bindEnv lets MPC_* environment variables override any setting. Dots and
// dashes in setting names become underscores, so engine.worker-pool-size is
// read from MPC_ENGINE_WORKER_POOL_SIZE.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("MPC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initLogger(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log = log.Level(lvl)
	return nil
}
