package malicious_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/malicious"
	"github.com/dwallet-labs/dwallet-network-sub008/utils/unittest"
)

// TestReport_FourValidators: four validators of stake 1 and a threshold of 3.
// Three validators report the same accusation; the third confirms it.
func TestReport_FourValidators(t *testing.T) {
	committee := unittest.CommitteeFixture(t, 1, 4)
	ids := committee.Authorities().IDs()
	threshold, err := malicious.QuorumThresholdFromFaultyPercent(committee.TotalStake(), 33)
	require.NoError(t, err)
	require.Equal(t, uint64(3), threshold)

	handler, err := malicious.NewHandler(unittest.Logger(), committee, threshold)
	require.NoError(t, err)

	accused := ids[0]
	report := mpc.NewMaliciousReport(unittest.SessionIDFixture(), 2, []mpc.AuthorityID{accused})

	status, err := handler.Report(report, ids[1])
	require.NoError(t, err)
	assert.Equal(t, malicious.WaitingForQuorum, status)

	status, err = handler.Report(report, ids[2])
	require.NoError(t, err)
	assert.Equal(t, malicious.WaitingForQuorum, status)
	assert.False(t, handler.IsMalicious(accused))
	assert.Zero(t, handler.Version())

	status, err = handler.Report(report, ids[3])
	require.NoError(t, err)
	assert.Equal(t, malicious.QuorumReached, status)

	assert.True(t, handler.IsMalicious(accused))
	assert.Equal(t, []mpc.AuthorityID{accused}, handler.ConfirmedMalicious())
	assert.Equal(t, uint64(1), handler.ConfirmedStake())
	assert.Equal(t, uint64(1), handler.Version())

	// the accused may report too, after quorum
	status, err = handler.Report(report, ids[0])
	require.NoError(t, err)
	assert.Equal(t, malicious.OverQuorum, status)
	assert.Equal(t, uint64(1), handler.Version())
}

func TestReport_DuplicateReporter(t *testing.T) {
	committee := unittest.CommitteeFixture(t, 1, 4)
	ids := committee.Authorities().IDs()
	counter := unittest.NewLevelCounter()
	handler, err := malicious.NewHandler(unittest.HookedLogger(counter), committee, 3)
	require.NoError(t, err)

	report := mpc.NewMaliciousReport(unittest.SessionIDFixture(), 1, []mpc.AuthorityID{ids[3]})
	for i := 0; i < 3; i++ {
		status, err := handler.Report(report, ids[0])
		require.NoError(t, err)
		assert.Equal(t, malicious.WaitingForQuorum, status)
	}
	assert.Equal(t, 2, counter.Count(zerolog.WarnLevel))

	// accused order does not matter for identity of the report
	reordered := mpc.MaliciousReport{SessionID: report.SessionID, ConsensusRound: 1, Accused: []mpc.AuthorityID{ids[3], ids[3]}}
	status, err := handler.Report(reordered, ids[1])
	require.NoError(t, err)
	assert.Equal(t, malicious.WaitingForQuorum, status)
	status, err = handler.Report(report, ids[2])
	require.NoError(t, err)
	assert.Equal(t, malicious.QuorumReached, status)
}

func TestReport_DistinctReports(t *testing.T) {
	committee := unittest.CommitteeFixture(t, 1, 4)
	ids := committee.Authorities().IDs()
	handler, err := malicious.NewHandler(unittest.Logger(), committee, 3)
	require.NoError(t, err)

	sessionID := unittest.SessionIDFixture()
	// reports differing in round are counted independently
	for i, reporter := range ids[:3] {
		report := mpc.NewMaliciousReport(sessionID, uint64(i), []mpc.AuthorityID{ids[3]})
		status, err := handler.Report(report, reporter)
		require.NoError(t, err)
		assert.Equal(t, malicious.WaitingForQuorum, status)
	}
	assert.Empty(t, handler.ConfirmedMalicious())
}

func TestReport_StakeWeighted(t *testing.T) {
	list := unittest.AuthorityListFixture(4)
	list[0].Stake = 10
	committee, err := mpc.NewCommittee(1, list)
	require.NoError(t, err)
	threshold, err := malicious.QuorumThresholdFromFaultyPercent(committee.TotalStake(), 33)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), threshold)

	handler, err := malicious.NewHandler(unittest.Logger(), committee, threshold)
	require.NoError(t, err)
	report := mpc.NewMaliciousReport(unittest.SessionIDFixture(), 1, []mpc.AuthorityID{list[3].ID})

	// a single heavy reporter reaches the threshold on its own
	status, err := handler.Report(report, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, malicious.QuorumReached, status)
}

func TestReport_UnknownReporter(t *testing.T) {
	committee := unittest.CommitteeFixture(t, 1, 4)
	handler, err := malicious.NewHandler(unittest.Logger(), committee, 3)
	require.NoError(t, err)
	_, err = handler.Report(unittest.MaliciousReportFixture(1, committee.Authorities()[0].ID), unittest.AuthorityIDFixture())
	assert.True(t, errors.Is(err, malicious.ErrUnknownReporter))
}

func TestNewHandler_Threshold(t *testing.T) {
	committee := unittest.CommitteeFixture(t, 1, 4)

	_, err := malicious.NewHandler(unittest.Logger(), committee, 0)
	assert.True(t, errors.Is(err, malicious.ErrInvalidThreshold))
	_, err = malicious.NewHandler(unittest.Logger(), committee, 5)
	assert.True(t, errors.Is(err, malicious.ErrInvalidThreshold))

	_, err = malicious.QuorumThresholdFromFaultyPercent(4, 34)
	assert.True(t, errors.Is(err, malicious.ErrInvalidThreshold))
	threshold, err := malicious.QuorumThresholdFromFaultyPercent(100, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), threshold)
}

// TestReport_QuorumExactness: for any committee size, threshold and reporting
// order with repetitions, QuorumReached is returned exactly once, at the
// reporter that brings the distinct count to the threshold.
func TestReport_QuorumExactness(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 12).Draw(rt, "n")
		committee := unittest.CommitteeFixture(t, 1, n)
		ids := committee.Authorities().IDs()
		threshold := rapid.Uint64Range(1, uint64(n)).Draw(rt, "threshold")

		handler, err := malicious.NewHandler(zerolog.Nop(), committee, threshold)
		if err != nil {
			rt.Fatal(err)
		}
		report := mpc.NewMaliciousReport(unittest.SessionIDFixture(), 3, []mpc.AuthorityID{ids[0]})

		order := rapid.SliceOfN(rapid.IntRange(0, n-1), 1, 3*n).Draw(rt, "order")
		counted := make(map[int]struct{})
		reached := 0
		for _, i := range order {
			status, err := handler.Report(report, ids[i])
			if err != nil {
				rt.Fatal(err)
			}
			before := len(counted)
			counted[i] = struct{}{}

			var expected malicious.ReportStatus
			switch {
			case uint64(before) >= threshold:
				expected = malicious.OverQuorum
			case uint64(len(counted)) >= threshold:
				expected = malicious.QuorumReached
			default:
				expected = malicious.WaitingForQuorum
			}
			if status != expected {
				rt.Fatalf("reporter %d (distinct %d, threshold %d): got %s, want %s", i, len(counted), threshold, status, expected)
			}
			if status == malicious.QuorumReached {
				reached++
			}
		}
		if reached > 1 {
			rt.Fatalf("quorum reached %d times", reached)
		}
		if handler.IsMalicious(ids[0]) != (uint64(len(counted)) >= threshold) {
			rt.Fatalf("confirmation does not match distinct reporters")
		}
	})
}
