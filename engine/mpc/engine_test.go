package mpc

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub008/engine"
	mpcmodel "github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/broker"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/consensus"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party/transcript"
	bstorage "github.com/dwallet-labs/dwallet-network-sub008/storage/badger"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/unittest"
)

type engineNode struct {
	id      mpcmodel.AuthorityID
	engine  *Engine
	outputs *bstorage.MPCOutputs
}

func startEngines(t *testing.T, ctx irrecoverable.SignalerContext, committee *mpcmodel.Committee) []*engineNode {
	hub := consensus.NewHub(unittest.Logger())
	config := DefaultConfig()
	config.TickInterval = 10 * time.Millisecond

	var nodes []*engineNode
	for _, id := range committee.Authorities().IDs() {
		db := unittest.BadgerDB(t, unittest.TempDir(t))
		t.Cleanup(func() { _ = db.Close() })
		collector := metrics.NewNoopCollector()
		outputs := bstorage.NewMPCOutputs(collector, db)

		manager, err := NewManager(unittest.Logger(), id, config, party.NewTable(transcript.New(id)), outputs, collector)
		require.NoError(t, err)
		submitter := broker.New(unittest.Logger(), hub.Submitter(id), collector, config.Broker)
		e, err := New(unittest.Logger(), collector, collector, submitter, manager)
		require.NoError(t, err)
		hub.Subscribe(e)

		e.Start(ctx)
		nodes = append(nodes, &engineNode{id: id, engine: e, outputs: outputs})
	}
	for _, n := range nodes {
		unittest.RequireCloseBefore(t, n.engine.Ready(), time.Second, "engine did not start")
	}
	return nodes
}

// TestEngine_EndToEnd runs four engines over a loopback consensus through a
// full epoch.
func TestEngine_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	signalerCtx := irrecoverable.NewMockSignalerContext(t, ctx)
	committee := unittest.CommitteeFixture(t, 1, 4)
	nodes := startEngines(t, signalerCtx, committee)

	for _, n := range nodes {
		require.NoError(t, n.engine.StartEpoch(ctx, committee))
		require.NoError(t, n.engine.SetNetworkKey(ctx, testNetworkKey))
	}

	events := []mpcmodel.SessionRequest{
		unittest.SessionRequestFixture(mpcmodel.DKGFirstRound, 1, unittest.RandomBytes(32)),
		unittest.SessionRequestFixture(mpcmodel.PresignSecondRound, 1, unittest.RandomBytes(32)),
		unittest.SessionRequestFixture(mpcmodel.EncryptedShareVerification, 1, unittest.RandomBytes(32)),
	}
	for _, event := range events {
		for _, n := range nodes {
			require.NoError(t, n.engine.SubmitSessionRequest(event))
		}
	}

	for _, event := range events {
		expected := transcript.Output(event.SessionIdentifier(), event.SessionKind(), event.PublicInput(), testNetworkKey)
		for _, n := range nodes {
			require.Eventually(t, func() bool {
				output, err := n.outputs.ByID(event.SessionIdentifier())
				return err == nil && assert.ObjectsAreEqual(expected, output)
			}, 5*time.Second, 10*time.Millisecond)
		}
	}

	for _, n := range nodes {
		require.NoError(t, n.engine.EndOfPublish(ctx))
	}
	for _, n := range nodes {
		require.Eventually(t, func() bool {
			var quorum bool
			err := n.engine.Query(ctx, func(m *Manager) error {
				quorum = m.EndOfPublishQuorum()
				return nil
			})
			return err == nil && quorum
		}, 5*time.Second, 10*time.Millisecond)

		dropped, err := n.engine.EndEpoch(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, 0, dropped)
	}

	cancel()
	for _, n := range nodes {
		unittest.RequireCloseBefore(t, n.engine.Done(), time.Second, "engine did not stop")
		_, err := n.engine.EndEpoch(context.Background(), 1)
		assert.ErrorIs(t, err, ErrEngineStopped)
	}
}

func TestEngine_InvalidPayload(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	committee := unittest.CommitteeFixture(t, 1, 4)
	nodes := startEngines(t, irrecoverable.NewMockSignalerContext(t, ctx), committee)

	err := nodes[0].engine.ProcessConsensusOutput(nodes[1].id, []byte{mpcmodel.CodeMax, 1, 2})
	assert.True(t, engine.IsInvalidInputError(err))
	err = nodes[0].engine.ProcessConsensusOutput(nodes[1].id, nil)
	assert.True(t, engine.IsInvalidInputError(err))

	// commands fail without an active epoch but do not stop the engine
	err = nodes[0].engine.EndOfPublish(ctx)
	assert.ErrorIs(t, err, ErrNoActiveEpoch)
	require.NoError(t, nodes[0].engine.StartEpoch(ctx, committee))
	err = nodes[0].engine.StartEpoch(ctx, committee)
	assert.ErrorIs(t, err, ErrEpochActive)
}

func TestMessageLabel(t *testing.T) {
	payload, err := mpcmodel.EncodeConsensusMessage(&mpcmodel.EndOfPublishMessage{Epoch: 3})
	require.NoError(t, err)
	assert.Equal(t, metrics.MessageEndOfPublish, messageLabel(payload))
	assert.Equal(t, metrics.MessageUnknown, messageLabel(nil))
	assert.Equal(t, metrics.MessageRoundMessage, payloadLabel(&mpcmodel.RoundMessage{}))
}
