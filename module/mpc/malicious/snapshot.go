package malicious

import (
	"bytes"
	"sort"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// Snapshot is an immutable view of the confirmed-malicious set.
type Snapshot struct {
	version     uint64
	stake       uint64
	authorities map[mpc.AuthorityID]struct{}
}

func emptySnapshot() *Snapshot {
	return &Snapshot{authorities: make(map[mpc.AuthorityID]struct{})}
}

// with returns a copy of the snapshot extended by added.
func (s *Snapshot) with(added []mpc.AuthorityID, committee *mpc.Committee) *Snapshot {
	next := &Snapshot{
		version:     s.version + 1,
		stake:       s.stake,
		authorities: make(map[mpc.AuthorityID]struct{}, len(s.authorities)+len(added)),
	}
	for id := range s.authorities {
		next.authorities[id] = struct{}{}
	}
	for _, id := range added {
		next.authorities[id] = struct{}{}
		next.stake += committee.StakeOf(id)
	}
	return next
}

func (s *Snapshot) Version() uint64 {
	return s.version
}

func (s *Snapshot) Stake() uint64 {
	return s.stake
}

func (s *Snapshot) Len() int {
	return len(s.authorities)
}

func (s *Snapshot) Contains(id mpc.AuthorityID) bool {
	_, ok := s.authorities[id]
	return ok
}

// IDs returns the confirmed authorities in byte order.
func (s *Snapshot) IDs() []mpc.AuthorityID {
	ids := make([]mpc.AuthorityID, 0, len(s.authorities))
	for id := range s.authorities {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	return ids
}
