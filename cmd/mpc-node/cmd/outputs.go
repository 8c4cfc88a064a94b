package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
)

var flagNode int

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "Inspect the persisted session outputs",
}

var outputsGetCmd = &cobra.Command{
	Use:   "get <session-id>",
	Short: "Print the output persisted for a session, hex encoded",
	Args:  cobra.ExactArgs(1),
	RunE:  getOutput,
}

func init() {
	rootCmd.AddCommand(outputsCmd)
	outputsCmd.AddCommand(outputsGetCmd)
	outputsGetCmd.Flags().IntVar(&flagNode, "node", 0, "index of the committee member whose database is read")
}

func getOutput(cmd *cobra.Command, args []string) error {
	sessionID, err := mpc.ParseSessionIdentifier(args[0])
	if err != nil {
		return err
	}
	config, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if flagNode < 0 {
		return fmt.Errorf("invalid node index %d", flagNode)
	}

	outputs, closeDB, err := openOutputs(config, flagNode, metrics.NewNoopCollector())
	if err != nil {
		return err
	}
	defer func() {
		if err := closeDB(); err != nil {
			log.Error().Err(err).Msg("could not close output database")
		}
	}()

	output, err := outputs.ByID(sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no output persisted for session %x", sessionID)
	}
	if err != nil {
		return fmt.Errorf("could not read output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(output))
	return nil
}
