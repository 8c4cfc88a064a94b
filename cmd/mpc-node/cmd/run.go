package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"github.com/dwallet-labs/dwallet-network-sub008/engine/mpc"
	mpcmodel "github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/broker"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/consensus"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party/transcript"
	"github.com/dwallet-labs/dwallet-network-sub008/module/util"
)

const (
	networkKeyPollInterval = 50 * time.Millisecond
	shutdownTimeout        = 10 * time.Second
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a committee over an in-process consensus",
	Long: `Runs every member of a development committee in this process. The members
share a totally ordered loopback consensus, persist their outputs in separate
databases under the data directory, and process the session requests read
from the events file.`,
	RunE: runNodes,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
	_ = viper.BindPFlags(runCmd.Flags())
}

// devAuthorityID derives the identifier of the committee member with the
// given index. Identifiers are stable across runs so the databases under the
// data directory can be reopened.
func devAuthorityID(index int) mpcmodel.AuthorityID {
	return mpcmodel.AuthorityID(blake3.Sum256([]byte(fmt.Sprintf("mpc-node dev authority %d", index))))
}

func devCommittee(epoch uint64, size int) (*mpcmodel.Committee, error) {
	authorities := make(mpcmodel.AuthorityList, 0, size)
	for i := 0; i < size; i++ {
		authorities = append(authorities, &mpcmodel.Authority{
			ID:    devAuthorityID(i),
			Index: uint16(i),
			Stake: 1,
		})
	}
	return mpcmodel.NewCommittee(epoch, authorities)
}

type node struct {
	id      mpcmodel.AuthorityID
	engine  *mpc.Engine
	closeDB func() error
}

func runNodes(*cobra.Command, []string) error {
	config, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	events, err := readEventsFile(config.Events, config.Epoch)
	if err != nil {
		return err
	}
	committee, err := devCommittee(config.Epoch, config.CommitteeSize)
	if err != nil {
		return fmt.Errorf("could not build committee: %w", err)
	}

	registry := prometheus.NewRegistry()
	mpcMetrics := metrics.NewMPCCollector(registry)
	engineMetrics := metrics.NewEngineCollector(registry)
	cacheMetrics := metrics.NewCacheCollector(registry)

	hub := consensus.NewHub(log)
	defer hub.Close()

	nodes := make([]*node, 0, config.CommitteeSize)
	defer func() {
		for _, n := range nodes {
			if err := n.closeDB(); err != nil {
				log.Error().Err(err).Hex("node", n.id[:]).Msg("could not close output database")
			}
		}
	}()
	for i, id := range committee.Authorities().IDs() {
		nodeLog := log.With().Int("node", i).Logger()
		outputs, closeDB, err := openOutputs(config, i, cacheMetrics)
		if err != nil {
			return err
		}
		n := &node{id: id, closeDB: closeDB}
		nodes = append(nodes, n)

		manager, err := mpc.NewManager(nodeLog, id, config.Engine, party.NewTable(transcript.New(id)), outputs, mpcMetrics)
		if err != nil {
			return fmt.Errorf("could not create session manager: %w", err)
		}
		submitter := broker.New(nodeLog, hub.Submitter(id), mpcMetrics, config.Engine.Broker)
		n.engine, err = mpc.New(nodeLog, engineMetrics, mpcMetrics, submitter, manager)
		if err != nil {
			return fmt.Errorf("could not create mpc engine: %w", err)
		}
		hub.Subscribe(n.engine)
	}

	components := make([]module.ReadyDoneAware, 0, len(nodes)+1)
	startables := make([]module.Startable, 0, len(nodes)+1)
	for _, n := range nodes {
		components = append(components, n.engine)
		startables = append(startables, n.engine)
	}
	if config.MetricsAddr != "" {
		server := metrics.NewServer(log, config.MetricsAddr, registry, config.Profiler)
		components = append(components, server)
		startables = append(startables, server)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalerCtx, errChan := irrecoverable.WithSignaler(ctx)

	for _, c := range startables {
		c.Start(signalerCtx)
	}
	err = util.WaitClosed(ctx, util.AllReady(components...))
	if err != nil {
		return nil
	}
	log.Info().Int("committee_size", len(nodes)).Uint64("epoch", config.Epoch).Msg("committee started")

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		select {
		case err := <-errChan:
			return fmt.Errorf("unhandled irrecoverable error: %w", err)
		case <-groupCtx.Done():
			return nil
		}
	})
	group.Go(func() error {
		err := drive(groupCtx, config, committee, nodes, events)
		if err != nil {
			return err
		}
		<-groupCtx.Done()
		return nil
	})
	err = group.Wait()

	cancel()
	select {
	case <-util.AllDone(components...):
	case <-time.After(shutdownTimeout):
		log.Warn().Msg("components did not stop in time")
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("committee stopped")
	return nil
}

// drive opens the epoch on every member, runs the network key generation if
// enabled, and hands every member the session requests, the way the chain
// would deliver events to each validator.
func drive(ctx context.Context, config Config, committee *mpcmodel.Committee, nodes []*node, events []mpcmodel.SessionRequest) error {
	for _, n := range nodes {
		err := n.engine.StartEpoch(ctx, committee)
		if err != nil {
			return fmt.Errorf("could not start epoch: %w", err)
		}
	}

	if config.NetworkDKG {
		key, err := generateNetworkKey(ctx, config, nodes)
		if err != nil {
			return err
		}
		log.Info().Hex("network_key", key).Msg("network key generated")
	}

	for _, event := range events {
		for _, n := range nodes {
			err := n.engine.SubmitSessionRequest(event)
			if err != nil {
				return fmt.Errorf("could not submit session request %x: %w", event.SessionIdentifier(), err)
			}
		}
	}
	log.Info().Int("events", len(events)).Msg("session requests submitted")
	return nil
}

// generateNetworkKey submits a NetworkDKG request to every member and waits
// until all of them adopted the same key.
func generateNetworkKey(ctx context.Context, config Config, nodes []*node) ([]byte, error) {
	event, err := mpcmodel.NewSessionRequest(mpcmodel.NetworkDKG, mpcmodel.StartSessionEvent{
		EventID: []byte(fmt.Sprintf("network-dkg-%d", config.Epoch)),
		Epoch:   config.Epoch,
	})
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		err := n.engine.SubmitSessionRequest(event)
		if err != nil {
			return nil, fmt.Errorf("could not submit network dkg request: %w", err)
		}
	}

	ticker := time.NewTicker(networkKeyPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
		key, err := commonNetworkKey(ctx, nodes)
		if err != nil {
			return nil, err
		}
		if key != nil {
			return key, nil
		}
	}
}

// commonNetworkKey returns the network key if every member holds the same
// key, and nil if some member has none yet.
func commonNetworkKey(ctx context.Context, nodes []*node) ([]byte, error) {
	var common []byte
	for _, n := range nodes {
		var key []byte
		err := n.engine.Query(ctx, func(m *mpc.Manager) error {
			key = m.NetworkKey()
			return nil
		})
		if err != nil {
			return nil, err
		}
		if key == nil {
			return nil, nil
		}
		if common != nil && string(common) != string(key) {
			return nil, fmt.Errorf("members adopted different network keys")
		}
		common = key
	}
	return common, nil
}
