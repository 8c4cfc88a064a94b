package mpc

import (
	"bytes"
	"encoding/binary"
	"sort"

	"github.com/zeebo/blake3"
)

const reportKeyContext = "dwallet-network 2024-06 mpc malicious report"

// MaliciousReport accuses a set of authorities of misbehaving in the given
// round of a session.
type MaliciousReport struct {
	SessionID      SessionIdentifier
	ConsensusRound uint64
	Accused        []AuthorityID
}

// NewMaliciousReport builds a report with a canonical (sorted, de-duplicated)
// accused set.
func NewMaliciousReport(sessionID SessionIdentifier, round uint64, accused []AuthorityID) MaliciousReport {
	return MaliciousReport{
		SessionID:      sessionID,
		ConsensusRound: round,
		Accused:        canonicalAuthorities(accused),
	}
}

// ReportKey identifies a report by content: two reports with the same session,
// round, and accused set share a key regardless of accused order.
type ReportKey [32]byte

// Key returns the content key of the report.
func (r MaliciousReport) Key() ReportKey {
	h := blake3.NewDeriveKey(reportKeyContext)
	_, _ = h.Write(r.SessionID[:])
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], r.ConsensusRound)
	_, _ = h.Write(buf[:])
	for _, id := range canonicalAuthorities(r.Accused) {
		_, _ = h.Write(id[:])
	}
	var key ReportKey
	copy(key[:], h.Sum(nil))
	return key
}

func canonicalAuthorities(ids []AuthorityID) []AuthorityID {
	dup := make([]AuthorityID, len(ids))
	copy(dup, ids)
	sort.Slice(dup, func(i, j int) bool { return bytes.Compare(dup[i][:], dup[j][:]) < 0 })
	out := dup[:0]
	for _, id := range dup {
		if len(out) > 0 && id == out[len(out)-1] {
			continue
		}
		out = append(out, id)
	}
	return out
}
