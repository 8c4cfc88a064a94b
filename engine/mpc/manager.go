package mpc

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/engine"
	mpcmodel "github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module"
	"github.com/dwallet-labs/dwallet-network-sub008/module/irrecoverable"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/malicious"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/session"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/verifier"
	"github.com/dwallet-labs/dwallet-network-sub008/storage"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/logging"
)

// OutputAgreementRound is the consensus round recorded in accusations
// against authorities whose output digest diverged from the agreed one.
const OutputAgreementRound = ^uint64(0)

type bufferedMessage struct {
	sender  mpcmodel.AuthorityID
	round   uint64
	payload []byte
}

// epochState is everything the manager drops at the end of an epoch.
type epochState struct {
	committee *mpcmodel.Committee
	handle    session.EpochHandle
	registry  *session.Registry
	malicious *malicious.Handler
	verifier  *verifier.Verifier

	admissionClosed    bool
	endOfPublish       map[mpcmodel.AuthorityID]struct{}
	endOfPublishStake  uint64
	endOfPublishQuorum bool
}

// Manager drives the MPC sessions of the current epoch. It is not safe for
// concurrent use: every method is called from the engine's processing loop.
// Only Job.Run executes on other goroutines.
type Manager struct {
	log     zerolog.Logger
	config  Config
	me      mpcmodel.AuthorityID
	table   *party.Table
	outputs storage.MPCOutputs
	metrics module.MPCMetrics

	epoch      *epochState
	networkKey []byte
	outOfOrder *lru.Cache[mpcmodel.SessionIdentifier, []bufferedMessage]
	completed  *lru.Cache[mpcmodel.SessionIdentifier, struct{}]
	outbox     [][]byte
}

func NewManager(
	log zerolog.Logger,
	me mpcmodel.AuthorityID,
	config Config,
	table *party.Table,
	outputs storage.MPCOutputs,
	metrics module.MPCMetrics,
) (*Manager, error) {
	err := config.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid mpc engine config: %w", err)
	}
	outOfOrder, err := lru.New[mpcmodel.SessionIdentifier, []bufferedMessage](config.OutOfOrderSessions)
	if err != nil {
		return nil, fmt.Errorf("could not create out-of-order buffer: %w", err)
	}
	completed, err := lru.New[mpcmodel.SessionIdentifier, struct{}](config.CompletedSessions)
	if err != nil {
		return nil, fmt.Errorf("could not create completed sessions window: %w", err)
	}
	return &Manager{
		log:        log.With().Hex("me", me[:]).Logger(),
		config:     config,
		me:         me,
		table:      table,
		outputs:    outputs,
		metrics:    metrics,
		outOfOrder: outOfOrder,
		completed:  completed,
	}, nil
}

// StartEpoch opens the epoch of the committee. The previous epoch must have
// been ended.
func (m *Manager) StartEpoch(committee *mpcmodel.Committee) error {
	if m.epoch != nil {
		return fmt.Errorf("cannot start epoch %d while epoch %d is active: %w",
			committee.Epoch(), m.epoch.handle.Counter, ErrEpochActive)
	}
	if !committee.Contains(m.me) {
		m.log.Warn().Uint64("epoch", committee.Epoch()).Msg("this node is not a member of the committee")
	}

	threshold, err := malicious.QuorumThresholdFromFaultyPercent(committee.TotalStake(), m.config.MaxFaultyPercent)
	if err != nil {
		return fmt.Errorf("could not compute malicious quorum threshold: %w", err)
	}
	handler, err := malicious.NewHandler(m.log, committee, threshold)
	if err != nil {
		return fmt.Errorf("could not create malicious handler: %w", err)
	}
	outputs, err := verifier.New(m.log, committee, m.outputs, m.config.OutputCacheSize)
	if err != nil {
		return fmt.Errorf("could not create outputs verifier: %w", err)
	}
	handle := session.NewEpochHandle(committee.Epoch())
	registry, err := session.NewRegistry(handle, m.config.MaxActiveSessions)
	if err != nil {
		return fmt.Errorf("could not create session registry: %w", err)
	}

	m.epoch = &epochState{
		committee:    committee,
		handle:       handle,
		registry:     registry,
		malicious:    handler,
		verifier:     outputs,
		endOfPublish: make(map[mpcmodel.AuthorityID]struct{}),
	}
	m.log.Info().
		Uint64("epoch", committee.Epoch()).
		Int("committee_size", committee.Size()).
		Uint64("malicious_threshold", threshold).
		Msg("mpc epoch started")
	return nil
}

// EndEpoch drops every session of the epoch without persisting any output,
// closes the epoch handle and discards the malicious and verifier state.
// It returns the number of dropped sessions.
func (m *Manager) EndEpoch(counter uint64) (int, error) {
	ep := m.epoch
	if ep == nil {
		return 0, fmt.Errorf("cannot end epoch %d: %w", counter, ErrNoActiveEpoch)
	}
	if ep.handle.Counter != counter {
		return 0, fmt.Errorf("cannot end epoch %d, active epoch is %d: %w", counter, ep.handle.Counter, ErrEpochMismatch)
	}

	ep.handle.End()
	dropped := ep.registry.Clear()
	m.epoch = nil
	m.outOfOrder.Purge()
	m.completed.Purge()

	m.log.Info().
		Uint64("epoch", counter).
		Int("dropped_sessions", dropped).
		Msg("mpc epoch ended")
	return dropped, nil
}

// Epoch returns the counter of the active epoch.
func (m *Manager) Epoch() (uint64, bool) {
	if m.epoch == nil {
		return 0, false
	}
	return m.epoch.handle.Counter, true
}

// Registry returns the session registry of the active epoch, or nil.
func (m *Manager) Registry() *session.Registry {
	if m.epoch == nil {
		return nil
	}
	return m.epoch.registry
}

// Malicious returns the malicious handler of the active epoch, or nil.
func (m *Manager) Malicious() *malicious.Handler {
	if m.epoch == nil {
		return nil
	}
	return m.epoch.malicious
}

// SetNetworkKey sets the network key material handed to sessions that need it.
func (m *Manager) SetNetworkKey(key []byte) {
	m.networkKey = key
}

// NetworkKey returns the current network key, or nil before it is known.
func (m *Manager) NetworkKey() []byte {
	return m.networkKey
}

// TakeOutbound returns the payloads queued for consensus since the last call.
func (m *Manager) TakeOutbound() [][]byte {
	out := m.outbox
	m.outbox = nil
	return out
}

// HandleConsensusMessage routes a message decoded from consensus output to
// its handler. Unexpected message types are reported as
// engine.InvalidInputError.
func (m *Manager) HandleConsensusMessage(sender mpcmodel.AuthorityID, msg interface{}) error {
	switch msg := msg.(type) {
	case *mpcmodel.RoundMessage:
		return m.HandleRoundMessage(sender, msg)
	case *mpcmodel.MaliciousReportMessage:
		return m.HandleMaliciousReport(sender, msg.Report)
	case *mpcmodel.OutputDigestMessage:
		return m.HandleOutputDigest(sender, msg)
	case *mpcmodel.EndOfPublishMessage:
		return m.HandleEndOfPublish(sender, msg)
	default:
		return engine.NewInvalidInputErrorf("unexpected consensus message %T from %v", msg, sender)
	}
}

// HandleSessionRequest admits the session requested by the event. Duplicate
// events are ignored. Expected errors:
//   - engine.OutdatedInputError for events of another epoch, or after this
//     node ended publishing for the epoch
//   - engine.InvalidInputError for events of unknown protocol kinds
func (m *Manager) HandleSessionRequest(event mpcmodel.SessionRequest) error {
	ep := m.epoch
	if ep == nil {
		return engine.NewOutdatedInputErrorf("session request for epoch %d without active epoch", event.SessionEpoch())
	}
	if event.SessionEpoch() != ep.handle.Counter {
		return engine.NewOutdatedInputErrorf("session request for epoch %d, active epoch is %d", event.SessionEpoch(), ep.handle.Counter)
	}
	if ep.admissionClosed {
		return engine.NewOutdatedInputErrorf("session admission for epoch %d is closed", ep.handle.Counter)
	}

	id := event.SessionIdentifier()
	kind := event.SessionKind()
	log := logging.Session(m.log, id, kind)
	if m.completed.Contains(id) {
		log.Debug().Msg("ignoring request for completed session")
		return nil
	}

	var opts []session.Option
	if kind == mpcmodel.NetworkDKG {
		opts = append(opts, session.WithActiveCommitteeSnapshot())
	}
	s, created, err := ep.registry.Create(id, kind, event.PublicInput(), opts...)
	if errors.Is(err, session.ErrUnknownProtocol) {
		return engine.NewInvalidInputErrorf("invalid session request: %w", err)
	}
	if errors.Is(err, session.ErrEpochEnded) {
		return engine.NewOutdatedInputErrorf("session request for ended epoch: %w", err)
	}
	if err != nil {
		return fmt.Errorf("could not create session %v: %w", id, err)
	}
	if !created {
		log.Debug().Msg("ignoring duplicate session request")
		return nil
	}

	m.metrics.SessionCreated(kind)
	replayed := m.replayBuffered(s)
	log.Info().
		Uint64("sequence_number", s.SequenceNumber).
		Str("status", s.Status().String()).
		Int("replayed_messages", replayed).
		Msg("session created")
	return nil
}

func (m *Manager) replayBuffered(s *session.Session) int {
	buffered, ok := m.outOfOrder.Peek(s.ID)
	if !ok {
		return 0
	}
	m.outOfOrder.Remove(s.ID)
	for _, msg := range buffered {
		s.StoreMessage(msg.sender, msg.round, msg.payload)
	}
	return len(buffered)
}

// HandleRoundMessage stores the sender's round message. Messages for unknown
// sessions are held until the session is created; messages for completed
// or terminal sessions are discarded. Expected errors:
//   - engine.OutdatedInputError without an active epoch
//   - engine.InvalidInputError for senders outside the committee
//   - ErrMaliciousSender for confirmed-malicious senders
func (m *Manager) HandleRoundMessage(sender mpcmodel.AuthorityID, msg *mpcmodel.RoundMessage) error {
	ep := m.epoch
	if ep == nil {
		return engine.NewOutdatedInputErrorf("round message without active epoch")
	}
	if !ep.committee.Contains(sender) {
		return engine.NewInvalidInputErrorf("round message from non-committee authority %v", sender)
	}
	if ep.malicious.IsMalicious(sender) {
		return fmt.Errorf("round message from %v: %w", sender, ErrMaliciousSender)
	}

	s, ok := ep.registry.Get(msg.SessionID)
	if !ok {
		if m.completed.Contains(msg.SessionID) {
			return nil
		}
		m.buffer(sender, msg)
		return nil
	}

	stored := s.StoreMessage(sender, msg.Round, msg.Payload)
	if !stored {
		m.log.Debug().
			Hex("session_id", msg.SessionID[:]).
			Hex("sender", sender[:]).
			Uint64("round", msg.Round).
			Str("status", s.Status().String()).
			Msg("discarded late round message")
	}
	return nil
}

func (m *Manager) buffer(sender mpcmodel.AuthorityID, msg *mpcmodel.RoundMessage) {
	buffered, _ := m.outOfOrder.Peek(msg.SessionID)
	if len(buffered) >= m.config.OutOfOrderMessagesPerSession {
		m.log.Debug().
			Hex("session_id", msg.SessionID[:]).
			Hex("sender", sender[:]).
			Msg("out-of-order buffer full for session, dropping message")
		return
	}
	buffered = append(buffered, bufferedMessage{sender: sender, round: msg.Round, payload: msg.Payload})
	m.outOfOrder.Add(msg.SessionID, buffered)
}

// HandleMaliciousReport counts the reporter's accusation. When the report
// reaches quorum, every session whose round threshold can no longer be met
// by the remaining stake is failed.
func (m *Manager) HandleMaliciousReport(reporter mpcmodel.AuthorityID, report mpcmodel.MaliciousReport) error {
	ep := m.epoch
	if ep == nil {
		return engine.NewOutdatedInputErrorf("malicious report without active epoch")
	}
	m.metrics.MaliciousReportReceived()

	status, err := ep.malicious.Report(report, reporter)
	if errors.Is(err, malicious.ErrUnknownReporter) {
		return engine.NewInvalidInputErrorf("invalid malicious report: %w", err)
	}
	if err != nil {
		return fmt.Errorf("could not count malicious report: %w", err)
	}
	if status != malicious.QuorumReached {
		return nil
	}

	m.metrics.MaliciousAuthoritiesConfirmed(ep.malicious.Snapshot().Len())
	m.failInfeasible(ep)
	return nil
}

// failInfeasible fails the sessions whose round threshold exceeds the stake
// of the authorities not confirmed malicious.
func (m *Manager) failInfeasible(ep *epochState) {
	remaining := ep.committee.TotalStake() - ep.malicious.ConfirmedStake()
	for _, s := range ep.registry.Sessions() {
		if s.Status().IsTerminal() {
			continue
		}
		capability, err := m.table.Lookup(s.Kind)
		if err != nil || !capability.MultiRound {
			continue
		}
		required := roundThreshold(capability, ep.committee)
		if required <= remaining {
			continue
		}
		m.fail(ep, s, fmt.Errorf("round threshold %d exceeds stake %d of authorities not confirmed malicious", required, remaining))
	}
}

// HandleOutputDigest counts the sender's output digest. Once a quorum agrees,
// the local output is persisted and authorities with a diverging digest are
// accused.
func (m *Manager) HandleOutputDigest(sender mpcmodel.AuthorityID, msg *mpcmodel.OutputDigestMessage) error {
	ep := m.epoch
	if ep == nil {
		return engine.NewOutdatedInputErrorf("output digest without active epoch")
	}

	status, divergent, err := ep.verifier.SubmitPeerOutput(msg.SessionID, sender, msg.Digest)
	if errors.Is(err, verifier.ErrUnknownAuthority) {
		return engine.NewInvalidInputErrorf("invalid output digest: %w", err)
	}
	if err != nil {
		return fmt.Errorf("could not count output digest: %w", err)
	}

	if status == verifier.AgreementReached {
		if s, ok := ep.registry.Get(msg.SessionID); ok {
			m.metrics.OutputAgreed(s.Kind)
		}
		m.tryPersist(ep, msg.SessionID)
	}
	if len(divergent) > 0 {
		m.log.Warn().
			Hex("session_id", msg.SessionID[:]).
			Strs("divergent", logging.IDs(divergent)).
			Msg("authorities reported a diverging output")
		return m.accuse(msg.SessionID, OutputAgreementRound, divergent)
	}
	return nil
}

// HandleEndOfPublish counts the sender's end-of-publish marker for the epoch.
func (m *Manager) HandleEndOfPublish(sender mpcmodel.AuthorityID, msg *mpcmodel.EndOfPublishMessage) error {
	ep := m.epoch
	if ep == nil || msg.Epoch != ep.handle.Counter {
		return engine.NewOutdatedInputErrorf("end of publish for epoch %d is not for the active epoch", msg.Epoch)
	}
	stake := ep.committee.StakeOf(sender)
	if stake == 0 {
		return engine.NewInvalidInputErrorf("end of publish from non-committee authority %v", sender)
	}
	if _, ok := ep.endOfPublish[sender]; ok {
		return nil
	}
	ep.endOfPublish[sender] = struct{}{}
	ep.endOfPublishStake += stake

	if !ep.endOfPublishQuorum && ep.endOfPublishStake >= ep.committee.QuorumThreshold() {
		ep.endOfPublishQuorum = true
		m.log.Info().
			Uint64("epoch", msg.Epoch).
			Uint64("stake", ep.endOfPublishStake).
			Msg("quorum of authorities ended publishing for the epoch")
	}
	return nil
}

// EndOfPublishQuorum returns true once authorities holding a quorum of stake
// have ended publishing for the active epoch.
func (m *Manager) EndOfPublishQuorum() bool {
	return m.epoch != nil && m.epoch.endOfPublishQuorum
}

// EndOfPublish stops admitting sessions for the active epoch and queues this
// node's end-of-publish marker. Calling it again is a no-op.
func (m *Manager) EndOfPublish() error {
	ep := m.epoch
	if ep == nil {
		return ErrNoActiveEpoch
	}
	if ep.admissionClosed {
		return nil
	}
	ep.admissionClosed = true
	return m.submit(&mpcmodel.EndOfPublishMessage{Epoch: ep.handle.Counter})
}

// ReadySessions promotes pending sessions while capacity allows and returns a
// job for every session that can advance. Each returned session is acquired
// until its result is applied with ApplyResult.
//
// A session is ready when it is in FirstExecution, or in Active(r) with
// round r messages from authorities not confirmed malicious whose stake
// meets the threshold of its protocol. A session is not retried with the
// inputs of a previous attempt that ended in an accusation, unless the
// confirmed-malicious set changed since.
func (m *Manager) ReadySessions() []*Job {
	ep := m.epoch
	if ep == nil {
		return nil
	}

	promoted, err := ep.registry.PromotePending()
	if err != nil {
		return nil
	}
	for _, s := range promoted {
		log := logging.Session(m.log, s.ID, s.Kind)
		log.Debug().Msg("pending session promoted")
	}

	snapshot := ep.malicious.Snapshot()
	var jobs []*Job
	for _, s := range ep.registry.Sessions() {
		status := s.Status()
		if status.Code == mpcmodel.StatusFinished {
			m.tryPersist(ep, s.ID)
			continue
		}
		if !status.IsRunning() || s.InFlight() {
			continue
		}

		capability, err := m.table.Lookup(s.Kind)
		if err != nil {
			m.fail(ep, s, err)
			continue
		}

		req := party.AdvanceRequest{
			SessionID:    s.ID,
			Kind:         s.Kind,
			PublicInput:  s.PublicInput,
			PrivateState: s.PrivateState(),
		}
		if s.RequiresActiveCommitteeSnapshot {
			req.Committee = ep.committee
		}
		if s.RequiresNetworkKey {
			req.NetworkKey = m.networkKey
		}
		if status.Code == mpcmodel.StatusActive {
			messages := s.Messages(status.Round, snapshot.Contains)
			if stakeOf(ep.committee, messages) < roundThreshold(capability, ep.committee) {
				continue
			}
			req.Round = status.Round + 1
			req.Messages = messages
		}

		attempt := session.Attempt{
			Round:            req.Round,
			Inputs:           session.InputDigest(req.Messages),
			MaliciousVersion: snapshot.Version(),
		}
		if s.Attempted(attempt) {
			continue
		}
		if !s.TryAcquire() {
			continue
		}
		jobs = append(jobs, &Job{
			session:    s,
			capability: capability,
			request:    req,
			attempt:    attempt,
		})
	}
	return jobs
}

// ApplyResult applies the outcome of a job and releases its session. Results
// of sessions dropped while the job ran are discarded. Errors returned are
// irrecoverable.
func (m *Manager) ApplyResult(res *Result) error {
	s := res.job.session
	req := res.job.request
	defer s.Release()
	m.metrics.SessionAdvanced(s.Kind, res.Duration)

	ep := m.epoch
	if ep == nil || ep.handle.Counter != s.Epoch {
		return nil
	}
	if current, ok := ep.registry.Get(s.ID); !ok || current != s {
		return nil
	}

	log := logging.Session(m.log, s.ID, s.Kind).With().Uint64("round", req.Round).Logger()
	if res.Err != nil {
		if party.IsDependencyUnavailable(res.Err) {
			log.Debug().Err(res.Err).Msg("session waits for a dependency")
			return nil
		}
		m.fail(ep, s, res.Err)
		return nil
	}

	switch res.Outcome.Type {
	case party.OutcomeOutgoingMessage:
		s.SetPrivateState(res.PrivateState)
		err := s.Transition(mpcmodel.Active(req.Round))
		if err != nil {
			m.fail(ep, s, err)
			return nil
		}
		log.Debug().Msg("session advanced")
		return m.submit(&mpcmodel.RoundMessage{
			SessionID: s.ID,
			Round:     req.Round,
			Payload:   res.Outcome.Message,
		})

	case party.OutcomeFinalOutput:
		err := s.Transition(mpcmodel.Finished(res.Outcome.PublicOutput, res.Outcome.PrivateOutput))
		if err != nil {
			m.fail(ep, s, err)
			return nil
		}
		m.metrics.SessionFinished(s.Kind)

		digest, first, err := ep.verifier.SubmitLocalOutput(s.ID, res.Outcome.PublicOutput)
		if err != nil {
			log.Error().Err(err).Msg("could not record local output")
			return nil
		}
		log.Info().Str("digest", digest.String()).Bool("first", first).Msg("session finished")
		if first {
			err = m.submit(&mpcmodel.OutputDigestMessage{SessionID: s.ID, Digest: digest})
			if err != nil {
				return err
			}
		}
		m.tryPersist(ep, s.ID)
		return nil

	case party.OutcomeMalicious:
		s.RecordAttempt(res.job.attempt)
		log.Warn().
			Err(res.Outcome.Cause).
			Strs("accused", logging.IDs(res.Outcome.Parties)).
			Msg("session detected malicious parties")
		return m.accuse(s.ID, req.Round, res.Outcome.Parties)

	default:
		m.fail(ep, s, fmt.Errorf("unexpected outcome %s", res.Outcome.Type))
		return nil
	}
}

// Stats returns the number of running and pending sessions.
func (m *Manager) Stats() (running int, pending int) {
	if m.epoch == nil {
		return 0, 0
	}
	return m.epoch.registry.LenActive(), m.epoch.registry.Pending()
}

// tryPersist persists the agreed output once it is known locally, then
// removes the session from the registry.
func (m *Manager) tryPersist(ep *epochState, sessionID mpcmodel.SessionIdentifier) {
	if !ep.verifier.Ready(sessionID) {
		return
	}
	s, _ := ep.registry.Get(sessionID)

	err := ep.verifier.Persist(sessionID)
	if errors.Is(err, verifier.ErrLocalOutputDiverged) {
		m.log.Error().Err(err).Hex("session_id", sessionID[:]).Msg("local output diverged from the agreed output")
		ep.verifier.Forget(sessionID)
		m.complete(ep, sessionID)
		return
	}
	if err != nil {
		m.log.Error().Err(err).Hex("session_id", sessionID[:]).Msg("could not persist agreed output, will retry")
		return
	}

	if s != nil && s.Kind == mpcmodel.NetworkDKG {
		m.networkKey = s.Status().PublicOutput
		m.log.Info().Hex("session_id", sessionID[:]).Msg("network key available")
	}
	m.complete(ep, sessionID)
	m.log.Info().Hex("session_id", sessionID[:]).Msg("agreed output persisted")
}

func (m *Manager) complete(ep *epochState, sessionID mpcmodel.SessionIdentifier) {
	ep.registry.Remove(sessionID)
	m.completed.Add(sessionID, struct{}{})
	m.outOfOrder.Remove(sessionID)
}

func (m *Manager) fail(ep *epochState, s *session.Session, cause error) {
	err := s.Transition(mpcmodel.Failed())
	if err != nil {
		return
	}
	m.metrics.SessionFailed(s.Kind)
	ep.verifier.Forget(s.ID)
	log := logging.Session(m.log, s.ID, s.Kind)
	log.Warn().Err(cause).Msg("session failed")
}

func (m *Manager) accuse(sessionID mpcmodel.SessionIdentifier, round uint64, parties []mpcmodel.AuthorityID) error {
	if len(parties) == 0 {
		return nil
	}
	report := mpcmodel.NewMaliciousReport(sessionID, round, parties)
	return m.submit(&mpcmodel.MaliciousReportMessage{Report: report})
}

func (m *Manager) submit(msg interface{}) error {
	payload, err := mpcmodel.EncodeConsensusMessage(msg)
	if err != nil {
		return irrecoverable.NewExceptionf("could not encode %T: %w", msg, err)
	}
	m.outbox = append(m.outbox, payload)
	return nil
}

func roundThreshold(capability party.Capability, committee *mpcmodel.Committee) uint64 {
	if capability.Threshold == nil {
		return committee.QuorumThreshold()
	}
	return capability.Threshold(committee)
}

func stakeOf(committee *mpcmodel.Committee, messages map[mpcmodel.AuthorityID][]byte) uint64 {
	senders := make(map[mpcmodel.AuthorityID]struct{}, len(messages))
	for sender := range messages {
		senders[sender] = struct{}{}
	}
	return committee.StakeOfSet(senders)
}
