package malicious

import (
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/atomic"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/logging"
)

// MaxFaultyPercent is the largest share of stake the network tolerates as
// Byzantine.
const MaxFaultyPercent = 33

var (
	// ErrUnknownReporter is returned for reports from authorities outside the committee.
	ErrUnknownReporter = errors.New("reporter is not a committee member")

	// ErrInvalidThreshold is returned for thresholds outside the sane bounds.
	ErrInvalidThreshold = errors.New("invalid malicious quorum threshold")
)

// ReportStatus is the result of counting one report.
type ReportStatus int

const (
	// WaitingForQuorum means the report's reporters do not carry enough stake yet.
	WaitingForQuorum ReportStatus = iota
	// QuorumReached is returned exactly once per report, for the report that
	// first brought the reporters' stake to the threshold.
	QuorumReached
	// OverQuorum is returned for every report counted after quorum.
	OverQuorum
)

func (s ReportStatus) String() string {
	switch s {
	case WaitingForQuorum:
		return "waiting_for_quorum"
	case QuorumReached:
		return "quorum_reached"
	case OverQuorum:
		return "over_quorum"
	default:
		return fmt.Sprintf("unknown_report_status_%d", int(s))
	}
}

// QuorumThresholdFromFaultyPercent returns the reporter stake needed to confirm
// an accusation when up to faultyPercent of the total stake may be faulty.
func QuorumThresholdFromFaultyPercent(totalStake uint64, faultyPercent uint64) (uint64, error) {
	if faultyPercent > MaxFaultyPercent {
		return 0, fmt.Errorf("faulty percent %d outside [0, %d]: %w", faultyPercent, MaxFaultyPercent, ErrInvalidThreshold)
	}
	return totalStake - totalStake*faultyPercent/100, nil
}

type tally struct {
	report    mpc.MaliciousReport
	reporters map[mpc.AuthorityID]struct{}
	stake     uint64
	reached   bool
}

// Handler counts accusations from distinct committee members and confirms the
// accused authorities once the reporters of an identical report carry the
// threshold stake. State is scoped to one epoch.
//
// Report is called only by the orchestration loop. The confirmed set is
// published as an immutable Snapshot, so readers never take the lock.
type Handler struct {
	log       zerolog.Logger
	committee *mpc.Committee
	threshold uint64

	mu        sync.Mutex
	reports   map[mpc.ReportKey]*tally
	confirmed atomic.Value[*Snapshot]
}

// NewHandler returns a handler for the committee. The threshold must be
// positive and must not exceed the total stake.
func NewHandler(log zerolog.Logger, committee *mpc.Committee, threshold uint64) (*Handler, error) {
	if threshold == 0 || threshold > committee.TotalStake() {
		return nil, fmt.Errorf("threshold %d for total stake %d: %w", threshold, committee.TotalStake(), ErrInvalidThreshold)
	}
	return &Handler{
		log: log.With().
			Str("component", "malicious_handler").
			Uint64("epoch", committee.Epoch()).
			Uint64("threshold", threshold).
			Logger(),
		committee: committee,
		threshold: threshold,
		reports:   make(map[mpc.ReportKey]*tally),
		confirmed: atomic.NewValueOf(emptySnapshot()),
	}, nil
}

// Threshold returns the reporter stake required to confirm a report.
func (h *Handler) Threshold() uint64 {
	return h.threshold
}

// Report counts the report on behalf of reporter. Reporting the same report
// twice from the same authority does not change the count.
func (h *Handler) Report(report mpc.MaliciousReport, reporter mpc.AuthorityID) (ReportStatus, error) {
	stake := h.committee.StakeOf(reporter)
	if stake == 0 {
		return WaitingForQuorum, fmt.Errorf("report from %s: %w", reporter, ErrUnknownReporter)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	key := report.Key()
	t, ok := h.reports[key]
	if !ok {
		t = &tally{
			report:    mpc.NewMaliciousReport(report.SessionID, report.ConsensusRound, report.Accused),
			reporters: make(map[mpc.AuthorityID]struct{}),
		}
		h.reports[key] = t
	}

	if _, dup := t.reporters[reporter]; dup {
		h.log.Warn().
			Hex("session_id", report.SessionID[:]).
			Hex("reporter", reporter[:]).
			Msg("duplicate malicious report ignored")
		if t.reached {
			return OverQuorum, nil
		}
		return WaitingForQuorum, nil
	}

	t.reporters[reporter] = struct{}{}
	t.stake += stake
	if t.reached {
		return OverQuorum, nil
	}
	if t.stake < h.threshold {
		return WaitingForQuorum, nil
	}

	t.reached = true
	h.confirm(t.report)
	return QuorumReached, nil
}

func (h *Handler) confirm(report mpc.MaliciousReport) {
	current, _ := h.confirmed.Get()
	var added []mpc.AuthorityID
	for _, id := range report.Accused {
		if !h.committee.Contains(id) || current.Contains(id) {
			continue
		}
		added = append(added, id)
	}
	if len(added) == 0 {
		return
	}

	next := current.with(added, h.committee)
	h.confirmed.Set(next)
	h.log.Warn().
		Hex("session_id", report.SessionID[:]).
		Uint64("round", report.ConsensusRound).
		Strs("confirmed", logging.IDs(added)).
		Uint64("version", next.Version()).
		Msg("authorities confirmed malicious")
}

// IsMalicious returns true if the authority was confirmed malicious.
func (h *Handler) IsMalicious(id mpc.AuthorityID) bool {
	return h.Snapshot().Contains(id)
}

// ConfirmedMalicious returns the confirmed authorities.
func (h *Handler) ConfirmedMalicious() []mpc.AuthorityID {
	return h.Snapshot().IDs()
}

// ConfirmedStake returns the total stake of the confirmed authorities.
func (h *Handler) ConfirmedStake() uint64 {
	return h.Snapshot().Stake()
}

// Version increases every time the confirmed set grows.
func (h *Handler) Version() uint64 {
	return h.Snapshot().Version()
}

// Snapshot returns the current immutable confirmed set.
func (h *Handler) Snapshot() *Snapshot {
	s, _ := h.confirmed.Get()
	return s
}
