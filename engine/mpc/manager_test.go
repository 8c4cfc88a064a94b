package mpc

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/atomic"

	"github.com/dwallet-labs/dwallet-network-sub008/engine"
	mpcmodel "github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module/metrics"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party/transcript"
	storagemock "github.com/dwallet-labs/dwallet-network-sub008/storage/mock"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/unittest"
)

var (
	testPublicInput = []byte("public input")
	testNetworkKey  = []byte("network key")
)

func TestManager(t *testing.T) {
	suite.Run(t, new(ManagerSuite))
}

// ManagerSuite drives a single manager of a four-authority committee with
// stake 1 each. The node is the first authority; peer messages are forged
// with the transcript backend, and the node's own submissions are looped
// back as consensus would deliver them.
type ManagerSuite struct {
	suite.Suite

	committee *mpcmodel.Committee
	me        mpcmodel.AuthorityID
	peers     []mpcmodel.AuthorityID
	outputs   *storagemock.MPCOutputs
	config    Config
	manager   *Manager
}

func (s *ManagerSuite) SetupTest() {
	s.committee = unittest.CommitteeFixture(s.T(), 1, 4)
	ids := s.committee.Authorities().IDs()
	s.me = ids[0]
	s.peers = ids[1:]

	s.outputs = storagemock.NewMPCOutputs(s.T())
	s.outputs.On("Exists", mock.Anything).Return(false, nil).Maybe()
	s.config = DefaultConfig()
	s.build()
}

func (s *ManagerSuite) build(opts ...party.TableOption) {
	table := party.NewTable(transcript.New(s.me), opts...)
	m, err := NewManager(unittest.Logger(), s.me, s.config, table, s.outputs, metrics.NewNoopCollector())
	s.Require().NoError(err)
	s.Require().NoError(m.StartEpoch(s.committee))
	m.SetNetworkKey(testNetworkKey)
	s.manager = m
}

func (s *ManagerSuite) create(kind mpcmodel.ProtocolKind) mpcmodel.SessionRequest {
	event := unittest.SessionRequestFixture(kind, s.committee.Epoch(), testPublicInput)
	s.Require().NoError(s.manager.HandleSessionRequest(event))
	return event
}

// advance runs every ready session once and returns the number of jobs.
func (s *ManagerSuite) advance() int {
	jobs := s.manager.ReadySessions()
	for _, job := range jobs {
		s.Require().NoError(s.manager.ApplyResult(job.Run()))
	}
	return len(jobs)
}

// loopback delivers the node's pending submissions back to it and returns them.
func (s *ManagerSuite) loopback() []interface{} {
	var delivered []interface{}
	for _, payload := range s.manager.TakeOutbound() {
		msg, err := mpcmodel.DecodeConsensusMessage(payload)
		s.Require().NoError(err)
		s.Require().NoError(s.manager.HandleConsensusMessage(s.me, msg))
		delivered = append(delivered, msg)
	}
	return delivered
}

func (s *ManagerSuite) deliver(event mpcmodel.SessionRequest, round uint64, senders ...mpcmodel.AuthorityID) {
	for _, sender := range senders {
		err := s.manager.HandleRoundMessage(sender, roundMessage(s.T(), event, round, sender))
		s.Require().NoError(err)
	}
}

func (s *ManagerSuite) status(event mpcmodel.SessionRequest) mpcmodel.SessionStatus {
	sess, ok := s.manager.Registry().Get(event.SessionIdentifier())
	s.Require().True(ok)
	return sess.Status()
}

// finish drives a single-message-round session to Finished with messages
// from the node and the first two peers.
func (s *ManagerSuite) finish(event mpcmodel.SessionRequest) []byte {
	s.Require().Equal(1, s.advance())
	s.loopback()
	s.deliver(event, 0, s.peers[0], s.peers[1])
	s.Require().Equal(1, s.advance())
	s.Require().Equal(mpcmodel.StatusFinished, s.status(event).Code)
	return transcript.Output(event.SessionIdentifier(), event.SessionKind(), event.PublicInput(), testNetworkKey)
}

func roundMessage(t testing.TB, event mpcmodel.SessionRequest, round uint64, sender mpcmodel.AuthorityID) *mpcmodel.RoundMessage {
	body := transcript.Message(event.SessionIdentifier(), event.SessionKind(), round, event.PublicInput(), sender)
	payload, err := party.EncodeRoundPayload(event.SessionKind(), round, body)
	require.NoError(t, err)
	return &mpcmodel.RoundMessage{SessionID: event.SessionIdentifier(), Round: round, Payload: payload}
}

func countingAdvance(t testing.TB, kind mpcmodel.ProtocolKind, backend party.Backend, calls *atomic.Int64) party.TableOption {
	capability, err := party.NewTable(backend).Lookup(kind)
	require.NoError(t, err)
	return party.WithAdvance(kind, func(req party.AdvanceRequest) (party.Outcome, []byte, error) {
		calls.Inc()
		return capability.Advance(req)
	})
}

// TestDuplicateSessionRequest checks that a replayed creation event is a no-op.
func (s *ManagerSuite) TestDuplicateSessionRequest() {
	event := s.create(mpcmodel.Sign)
	s.Require().Equal(1, s.advance())
	s.loopback()

	err := s.manager.HandleSessionRequest(event)
	s.Require().NoError(err)
	s.Assert().Equal(1, s.manager.Registry().Len())
	s.Assert().Equal(mpcmodel.Active(0), s.status(event))

	sess, _ := s.manager.Registry().Get(event.SessionIdentifier())
	s.Assert().Equal(1, sess.MessageCount(0))
}

// TestRoundThreshold checks that a session requiring the whole committee is
// advanced exactly once, when the last round message arrives.
func (s *ManagerSuite) TestRoundThreshold() {
	calls := atomic.NewInt64(0)
	s.build(
		party.WithThreshold(mpcmodel.DKGFirstRound, party.TotalStakeThreshold),
		countingAdvance(s.T(), mpcmodel.DKGFirstRound, transcript.New(s.me), calls),
	)
	event := s.create(mpcmodel.DKGFirstRound)
	s.Assert().Equal(mpcmodel.FirstExecution(), s.status(event))

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.Active(0), s.status(event))
	s.loopback()

	s.deliver(event, 0, s.peers[0], s.peers[1])
	s.Assert().Equal(0, s.advance())
	s.Assert().Equal(int64(1), calls.Load())

	s.deliver(event, 0, s.peers[2])
	s.Require().Equal(1, s.advance())
	s.Assert().Equal(int64(2), calls.Load())
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(event).Code)

	delivered := s.loopback()
	s.Require().Len(delivered, 1)
	digest, ok := delivered[0].(*mpcmodel.OutputDigestMessage)
	s.Require().True(ok)
	expected := transcript.Output(event.SessionIdentifier(), mpcmodel.DKGFirstRound, testPublicInput, testNetworkKey)
	s.Assert().Equal(mpcmodel.DigestOf(expected), digest.Digest)
}

// TestMultiRoundOrdering checks that messages of a later round are held until
// the earlier round completed.
func (s *ManagerSuite) TestMultiRoundOrdering() {
	event := s.create(mpcmodel.DKGSecondRound)
	s.Require().Equal(1, s.advance())
	s.loopback()

	// round 1 messages arrive early and must not be consulted for round 0
	s.deliver(event, 1, s.peers...)
	s.Assert().Equal(0, s.advance())
	s.Assert().Equal(mpcmodel.Active(0), s.status(event))

	s.deliver(event, 0, s.peers[0], s.peers[1])
	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.Active(1), s.status(event))

	delivered := s.loopback()
	s.Require().Len(delivered, 1)
	msg := delivered[0].(*mpcmodel.RoundMessage)
	s.Assert().Equal(uint64(1), msg.Round)

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(event).Code)
}

// TestLateMessageAfterFinished checks that a finished session discards late
// messages without accusing their sender.
func (s *ManagerSuite) TestLateMessageAfterFinished() {
	event := s.create(mpcmodel.DKGFirstRound)
	s.finish(event)
	s.loopback()

	s.deliver(event, 0, s.peers[2])
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(event).Code)
	s.Assert().Equal(0, s.advance())
	s.Assert().Empty(s.manager.TakeOutbound())
	s.Assert().False(s.manager.Malicious().IsMalicious(s.peers[2]))
}

// TestOutputAgreement checks that the output is persisted once a quorum agreed
// on it, and that later messages of the session are dropped.
func (s *ManagerSuite) TestOutputAgreement() {
	event := s.create(mpcmodel.PresignFirstRound)
	output := s.finish(event)
	id := event.SessionIdentifier()
	s.loopback()

	s.outputs.On("Store", id, output).Return(nil).Once()
	digest := &mpcmodel.OutputDigestMessage{SessionID: id, Digest: mpcmodel.DigestOf(output)}
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[0], digest))
	s.Assert().Equal(1, s.manager.Registry().Len())
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[1], digest))

	s.Assert().Equal(0, s.manager.Registry().Len())
	s.Assert().Empty(s.manager.TakeOutbound())

	// replays after persistence are ignored
	s.deliver(event, 0, s.peers[2])
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[2], digest))
	s.Require().NoError(s.manager.HandleSessionRequest(event))
	s.Assert().Equal(0, s.manager.Registry().Len())
	s.outputs.AssertNumberOfCalls(s.T(), "Store", 1)
}

// TestOutputDivergence checks that an authority reporting a different output
// digest is accused once agreement is reached.
func (s *ManagerSuite) TestOutputDivergence() {
	event := s.create(mpcmodel.Sign)
	output := s.finish(event)
	id := event.SessionIdentifier()
	s.loopback()

	s.outputs.On("Store", id, output).Return(nil).Once()
	bogus := &mpcmodel.OutputDigestMessage{SessionID: id, Digest: mpcmodel.DigestOf([]byte("bogus"))}
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[2], bogus))

	digest := &mpcmodel.OutputDigestMessage{SessionID: id, Digest: mpcmodel.DigestOf(output)}
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[0], digest))
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[1], digest))

	delivered := s.loopback()
	s.Require().Len(delivered, 1)
	report := delivered[0].(*mpcmodel.MaliciousReportMessage).Report
	s.Assert().Equal(id, report.SessionID)
	s.Assert().Equal(OutputAgreementRound, report.ConsensusRound)
	s.Assert().Equal([]mpcmodel.AuthorityID{s.peers[2]}, report.Accused)
}

// TestMaliciousPayload checks that a forged round message leads to an
// accusation, that the session waits for the accusation to be confirmed, and
// completes without the accused once it is.
func (s *ManagerSuite) TestMaliciousPayload() {
	event := s.create(mpcmodel.DKGFirstRound)
	s.Require().Equal(1, s.advance())
	s.loopback()

	accused := s.peers[1]
	forged, err := party.EncodeRoundPayload(mpcmodel.DKGFirstRound, 0, []byte("forged"))
	s.Require().NoError(err)
	s.deliver(event, 0, s.peers[0])
	s.Require().NoError(s.manager.HandleRoundMessage(accused, &mpcmodel.RoundMessage{
		SessionID: event.SessionIdentifier(),
		Round:     0,
		Payload:   forged,
	}))

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.Active(0), s.status(event))
	delivered := s.loopback()
	s.Require().Len(delivered, 1)
	report := delivered[0].(*mpcmodel.MaliciousReportMessage).Report
	s.Assert().Equal([]mpcmodel.AuthorityID{accused}, report.Accused)

	// the same inputs are not retried
	s.Assert().Equal(0, s.advance())

	// two more reporters confirm the accusation
	s.Require().NoError(s.manager.HandleMaliciousReport(s.peers[0], report))
	s.Require().NoError(s.manager.HandleMaliciousReport(s.peers[2], report))
	s.Assert().True(s.manager.Malicious().IsMalicious(accused))

	err = s.manager.HandleRoundMessage(accused, roundMessage(s.T(), event, 0, accused))
	s.Assert().ErrorIs(err, ErrMaliciousSender)

	// without the accused, the remaining senders are below quorum
	s.Assert().Equal(0, s.advance())
	s.deliver(event, 0, s.peers[2])
	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(event).Code)
}

// TestMaliciousCascade checks that confirming an authority malicious fails the
// sessions whose round threshold can no longer be met, and only those.
func (s *ManagerSuite) TestMaliciousCascade() {
	s.build(party.WithThreshold(mpcmodel.DKGSecondRound, party.TotalStakeThreshold))
	strict := s.create(mpcmodel.DKGSecondRound)
	regular := s.create(mpcmodel.DKGFirstRound)
	local := s.create(mpcmodel.MakeSharePublic)

	report := unittest.MaliciousReportFixture(0, s.peers[2])
	for _, reporter := range []mpcmodel.AuthorityID{s.me, s.peers[0], s.peers[1]} {
		s.Require().NoError(s.manager.HandleMaliciousReport(reporter, report))
	}

	s.Assert().Equal(mpcmodel.Failed(), s.status(strict))
	s.Assert().Equal(mpcmodel.FirstExecution(), s.status(regular))
	s.Assert().Equal(mpcmodel.FirstExecution(), s.status(local))

	// failed sessions are not advanced
	s.Assert().Equal(2, s.advance())
	s.Assert().Equal(mpcmodel.Failed(), s.status(strict))
}

// TestIsolation checks that a failing or panicking advance fails only its own
// session.
func (s *ManagerSuite) TestIsolation() {
	s.build(
		party.WithAdvance(mpcmodel.Sign, func(party.AdvanceRequest) (party.Outcome, []byte, error) {
			panic("corrupted round state")
		}),
		party.WithAdvance(mpcmodel.PresignFirstRound, func(party.AdvanceRequest) (party.Outcome, []byte, error) {
			return party.Outcome{}, nil, errors.New("verification failed")
		}),
	)
	panicking := s.create(mpcmodel.Sign)
	failing := s.create(mpcmodel.PresignFirstRound)
	healthy := s.create(mpcmodel.DKGFirstRound)
	local := s.create(mpcmodel.EncryptedShareVerification)

	jobs := s.manager.ReadySessions()
	s.Require().Len(jobs, 4)
	for _, job := range jobs {
		res := job.Run()
		if job.Session().Kind == mpcmodel.Sign {
			s.Assert().ErrorIs(res.Err, ErrAdvancePanicked)
		}
		s.Require().NoError(s.manager.ApplyResult(res))
	}

	s.Assert().Equal(mpcmodel.Failed(), s.status(panicking))
	s.Assert().Equal(mpcmodel.Failed(), s.status(failing))
	s.Assert().Equal(mpcmodel.Active(0), s.status(healthy))
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(local).Code)
	for _, job := range jobs {
		s.Assert().False(job.Session().InFlight())
	}
}

// TestInvalidPublicInput checks that a session with unusable input fails.
func (s *ManagerSuite) TestInvalidPublicInput() {
	event := unittest.SessionRequestFixture(mpcmodel.Sign, s.committee.Epoch(), nil)
	s.Require().NoError(s.manager.HandleSessionRequest(event))
	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.Failed(), s.status(event))
}

// TestFailedSessionDigests checks that output digests arriving for a failed
// session leave no agreement state behind.
func (s *ManagerSuite) TestFailedSessionDigests() {
	event := unittest.SessionRequestFixture(mpcmodel.Sign, s.committee.Epoch(), nil)
	s.Require().NoError(s.manager.HandleSessionRequest(event))
	s.Require().Equal(1, s.advance())
	s.Require().Equal(mpcmodel.Failed(), s.status(event))

	digest := &mpcmodel.OutputDigestMessage{SessionID: event.SessionIdentifier(), Digest: mpcmodel.DigestOf([]byte("output"))}
	for _, peer := range s.peers {
		s.Require().NoError(s.manager.HandleOutputDigest(peer, digest))
	}
	s.Assert().Zero(s.manager.epoch.verifier.Len())
	s.Assert().Empty(s.manager.TakeOutbound())
	s.outputs.AssertNotCalled(s.T(), "Store", mock.Anything, mock.Anything)
}

// TestMissingNetworkKey checks that sessions wait for the network key without
// failing.
func (s *ManagerSuite) TestMissingNetworkKey() {
	s.build()
	s.manager.SetNetworkKey(nil)
	event := s.create(mpcmodel.Sign)

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.FirstExecution(), s.status(event))
	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.FirstExecution(), s.status(event))

	s.manager.SetNetworkKey(testNetworkKey)
	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.Active(0), s.status(event))
}

// TestOutOfOrderMessages checks that messages received before the creation
// event are replayed into the session.
func (s *ManagerSuite) TestOutOfOrderMessages() {
	event := unittest.SessionRequestFixture(mpcmodel.DKGFirstRound, s.committee.Epoch(), testPublicInput)
	s.deliver(event, 0, s.peers...)
	s.Assert().Equal(0, s.manager.Registry().Len())

	s.Require().NoError(s.manager.HandleSessionRequest(event))
	sess, ok := s.manager.Registry().Get(event.SessionIdentifier())
	s.Require().True(ok)
	s.Assert().Equal(3, sess.MessageCount(0))

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.Active(0), s.status(event))
	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(event).Code)
}

// TestOutOfOrderBound checks that the per-session out-of-order buffer is bounded.
func (s *ManagerSuite) TestOutOfOrderBound() {
	s.config.OutOfOrderMessagesPerSession = 2
	s.build()
	event := unittest.SessionRequestFixture(mpcmodel.DKGFirstRound, s.committee.Epoch(), testPublicInput)
	s.deliver(event, 0, s.peers...)

	s.Require().NoError(s.manager.HandleSessionRequest(event))
	sess, _ := s.manager.Registry().Get(event.SessionIdentifier())
	s.Assert().Equal(2, sess.MessageCount(0))
}

// TestInvalidInputs checks the error types returned for inputs that must be dropped.
func (s *ManagerSuite) TestInvalidInputs() {
	event := s.create(mpcmodel.Sign)

	s.Run("non-committee sender", func() {
		err := s.manager.HandleRoundMessage(unittest.AuthorityIDFixture(), roundMessage(s.T(), event, 0, s.peers[0]))
		s.Assert().True(engine.IsInvalidInputError(err))
	})
	s.Run("wrong epoch", func() {
		other := unittest.SessionRequestFixture(mpcmodel.Sign, s.committee.Epoch()+1, testPublicInput)
		err := s.manager.HandleSessionRequest(other)
		s.Assert().True(engine.IsOutdatedInputError(err))
	})
	s.Run("unknown protocol", func() {
		bad := badKindEvent{SessionRequest: unittest.SessionRequestFixture(mpcmodel.Sign, s.committee.Epoch(), testPublicInput)}
		err := s.manager.HandleSessionRequest(bad)
		s.Assert().True(engine.IsInvalidInputError(err))
	})
	s.Run("unknown reporter", func() {
		err := s.manager.HandleMaliciousReport(unittest.AuthorityIDFixture(), unittest.MaliciousReportFixture(0, s.peers[0]))
		s.Assert().True(engine.IsInvalidInputError(err))
	})
	s.Run("unknown digest sender", func() {
		err := s.manager.HandleOutputDigest(unittest.AuthorityIDFixture(), &mpcmodel.OutputDigestMessage{SessionID: event.SessionIdentifier()})
		s.Assert().True(engine.IsInvalidInputError(err))
	})
	s.Run("unexpected message", func() {
		err := s.manager.HandleConsensusMessage(s.peers[0], "text")
		s.Assert().True(engine.IsInvalidInputError(err))
	})
}

type badKindEvent struct {
	mpcmodel.SessionRequest
}

func (badKindEvent) SessionKind() mpcmodel.ProtocolKind { return mpcmodel.ProtocolKind(200) }

// TestCapacity checks that sessions beyond the active bound wait in Pending
// and are promoted as running sessions complete.
func (s *ManagerSuite) TestCapacity() {
	s.config.MaxActiveSessions = 1
	s.build()
	first := s.create(mpcmodel.EncryptedShareVerification)
	second := s.create(mpcmodel.EncryptedShareVerification)
	s.Assert().Equal(mpcmodel.Pending(), s.status(second))

	running, pending := s.manager.Stats()
	s.Assert().Equal(1, running)
	s.Assert().Equal(1, pending)

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(first).Code)

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.StatusFinished, s.status(second).Code)
}

// TestPendingOrder checks that a session created once a slot is free still
// waits behind the sessions that were pending before it.
func (s *ManagerSuite) TestPendingOrder() {
	s.config.MaxActiveSessions = 1
	s.build()
	first := s.create(mpcmodel.Sign)
	second := s.create(mpcmodel.Sign)
	s.Require().Equal(mpcmodel.Pending(), s.status(second))

	output := s.finish(first)
	s.loopback()
	s.outputs.On("Store", first.SessionIdentifier(), output).Return(nil).Once()
	digest := &mpcmodel.OutputDigestMessage{SessionID: first.SessionIdentifier(), Digest: mpcmodel.DigestOf(output)}
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[0], digest))
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[1], digest))
	_, ok := s.manager.Registry().Get(first.SessionIdentifier())
	s.Require().False(ok)

	third := s.create(mpcmodel.Sign)
	s.Assert().Equal(mpcmodel.Pending(), s.status(third))
	running, pending := s.manager.Stats()
	s.Assert().Equal(0, running)
	s.Assert().Equal(2, pending)

	s.Require().Equal(1, s.advance())
	s.Assert().Equal(mpcmodel.Active(0), s.status(second))
	s.Assert().Equal(mpcmodel.Pending(), s.status(third))
}

// TestEndEpoch checks that ending the epoch drops every unfinished session
// without persisting anything.
func (s *ManagerSuite) TestEndEpoch() {
	active := s.create(mpcmodel.DKGFirstRound)
	s.create(mpcmodel.Sign)
	s.Require().Equal(2, s.advance())
	s.Assert().Equal(mpcmodel.Active(0), s.status(active))
	s.manager.TakeOutbound()

	_, err := s.manager.EndEpoch(s.committee.Epoch() + 1)
	s.Require().ErrorIs(err, ErrEpochMismatch)

	dropped, err := s.manager.EndEpoch(s.committee.Epoch())
	s.Require().NoError(err)
	s.Assert().Equal(2, dropped)
	s.Assert().Nil(s.manager.Registry())

	err = s.manager.HandleSessionRequest(active)
	s.Assert().True(engine.IsOutdatedInputError(err))
	s.Assert().Empty(s.manager.ReadySessions())
	s.outputs.AssertNotCalled(s.T(), "Store", mock.Anything, mock.Anything)

	// the next epoch starts from a clean state
	next := unittest.CommitteeFixture(s.T(), s.committee.Epoch()+1, 4)
	s.Require().NoError(s.manager.StartEpoch(next))
	s.Require().ErrorIs(s.manager.StartEpoch(next), ErrEpochActive)
	s.Assert().Equal(0, s.manager.Registry().Len())
}

// TestStaleResult checks that a result computed for a session of an ended
// epoch is discarded.
func (s *ManagerSuite) TestStaleResult() {
	s.create(mpcmodel.Sign)
	jobs := s.manager.ReadySessions()
	s.Require().Len(jobs, 1)

	_, err := s.manager.EndEpoch(s.committee.Epoch())
	s.Require().NoError(err)

	s.Require().NoError(s.manager.ApplyResult(jobs[0].Run()))
	s.Assert().Empty(s.manager.TakeOutbound())
	s.Assert().False(jobs[0].Session().InFlight())
}

// TestEndOfPublish checks that the node stops admitting sessions after it
// ended publishing, and that peers' markers are counted by stake.
func (s *ManagerSuite) TestEndOfPublish() {
	s.Require().NoError(s.manager.EndOfPublish())
	delivered := s.loopback()
	s.Require().Len(delivered, 1)
	s.Assert().Equal(&mpcmodel.EndOfPublishMessage{Epoch: s.committee.Epoch()}, delivered[0])

	// calling again is a no-op
	s.Require().NoError(s.manager.EndOfPublish())
	s.Assert().Empty(s.manager.TakeOutbound())

	event := unittest.SessionRequestFixture(mpcmodel.Sign, s.committee.Epoch(), testPublicInput)
	err := s.manager.HandleSessionRequest(event)
	s.Assert().True(engine.IsOutdatedInputError(err))

	marker := &mpcmodel.EndOfPublishMessage{Epoch: s.committee.Epoch()}
	s.Require().NoError(s.manager.HandleEndOfPublish(s.peers[0], marker))
	s.Require().NoError(s.manager.HandleEndOfPublish(s.peers[0], marker))
	s.Assert().False(s.manager.EndOfPublishQuorum())
	s.Require().NoError(s.manager.HandleEndOfPublish(s.peers[1], marker))
	s.Assert().True(s.manager.EndOfPublishQuorum())

	err = s.manager.HandleEndOfPublish(s.peers[2], &mpcmodel.EndOfPublishMessage{Epoch: s.committee.Epoch() + 1})
	s.Assert().True(engine.IsOutdatedInputError(err))
	err = s.manager.HandleEndOfPublish(unittest.AuthorityIDFixture(), marker)
	s.Assert().True(engine.IsInvalidInputError(err))
}

// TestCommitteeSnapshot checks that only the network DKG party is handed the
// committee of the epoch.
func (s *ManagerSuite) TestCommitteeSnapshot() {
	committees := make(map[mpcmodel.ProtocolKind]*mpcmodel.Committee)
	record := func(kind mpcmodel.ProtocolKind) party.TableOption {
		capability, err := party.NewTable(transcript.New(s.me)).Lookup(kind)
		s.Require().NoError(err)
		return party.WithAdvance(kind, func(req party.AdvanceRequest) (party.Outcome, []byte, error) {
			committees[kind] = req.Committee
			return capability.Advance(req)
		})
	}
	s.build(record(mpcmodel.NetworkDKG), record(mpcmodel.Sign))
	s.create(mpcmodel.Sign)
	dkg := unittest.SessionRequestFixture(mpcmodel.NetworkDKG, s.committee.Epoch(), nil)
	s.Require().NoError(s.manager.HandleSessionRequest(dkg))

	s.Require().Equal(2, s.advance())
	s.Require().Contains(committees, mpcmodel.Sign)
	s.Assert().Nil(committees[mpcmodel.Sign])
	s.Assert().Same(s.committee, committees[mpcmodel.NetworkDKG])
}

// TestNetworkDKGKey checks that the agreed network DKG output becomes the
// network key.
func (s *ManagerSuite) TestNetworkDKGKey() {
	s.manager.SetNetworkKey(nil)
	event := unittest.SessionRequestFixture(mpcmodel.NetworkDKG, s.committee.Epoch(), nil)
	s.Require().NoError(s.manager.HandleSessionRequest(event))
	sess, _ := s.manager.Registry().Get(event.SessionIdentifier())
	s.Assert().True(sess.RequiresActiveCommitteeSnapshot)

	for round := uint64(0); round < transcript.MessageRounds(mpcmodel.NetworkDKG); round++ {
		s.Require().Equal(1, s.advance())
		s.loopback()
		s.deliver(event, round, s.peers...)
	}
	s.Require().Equal(1, s.advance())
	s.Require().Equal(mpcmodel.StatusFinished, s.status(event).Code)
	s.loopback()

	output := transcript.Output(event.SessionIdentifier(), mpcmodel.NetworkDKG, nil, nil)
	s.outputs.On("Store", event.SessionIdentifier(), output).Return(nil).Once()
	digest := &mpcmodel.OutputDigestMessage{SessionID: event.SessionIdentifier(), Digest: mpcmodel.DigestOf(output)}
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[0], digest))
	s.Require().NoError(s.manager.HandleOutputDigest(s.peers[1], digest))

	s.Assert().Equal(output, s.manager.NetworkKey())
}

func TestJob_RunRecoversPanic(t *testing.T) {
	job := &Job{
		capability: party.Capability{
			Advance: func(party.AdvanceRequest) (party.Outcome, []byte, error) {
				var state map[string]int
				state["round"]++
				return party.Outcome{}, nil, nil
			},
		},
		request: party.AdvanceRequest{Kind: mpcmodel.Sign, Round: 2},
	}
	res := job.Run()
	require.ErrorIs(t, res.Err, ErrAdvancePanicked)
	require.Nil(t, res.PrivateState)
}
