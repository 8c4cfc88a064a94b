package mpc

import (
	"fmt"
	"sort"
)

// Authority is a member of the validator committee of an epoch.
type Authority struct {
	ID    AuthorityID
	Index uint16
	Stake uint64
}

func (a Authority) String() string {
	return fmt.Sprintf("%d-%s=%d", a.Index, a.ID, a.Stake)
}

// AuthorityList is a list of committee members.
type AuthorityList []*Authority

// TotalStake returns the total stake of all given authorities.
func (al AuthorityList) TotalStake() uint64 {
	var total uint64
	for _, a := range al {
		total += a.Stake
	}
	return total
}

// IDs returns the identifiers of the authorities in the list.
func (al AuthorityList) IDs() []AuthorityID {
	ids := make([]AuthorityID, 0, len(al))
	for _, a := range al {
		ids = append(ids, a.ID)
	}
	return ids
}

// Filter returns the authorities for which the filter returns true.
func (al AuthorityList) Filter(filter func(*Authority) bool) AuthorityList {
	var dup AuthorityList
	for _, a := range al {
		if filter(a) {
			dup = append(dup, a)
		}
	}
	return dup
}

// Committee is the stake-weighted validator set of one epoch. It is immutable
// once constructed.
type Committee struct {
	epoch       uint64
	authorities AuthorityList
	byID        map[AuthorityID]*Authority
	totalStake  uint64
}

// NewCommittee builds the committee of the given epoch. Authorities are sorted
// by index; duplicate identifiers or indices and zero-stake members are rejected.
func NewCommittee(epoch uint64, authorities AuthorityList) (*Committee, error) {
	if len(authorities) == 0 {
		return nil, fmt.Errorf("empty committee for epoch %d", epoch)
	}
	sorted := make(AuthorityList, 0, len(authorities))
	byID := make(map[AuthorityID]*Authority, len(authorities))
	indices := make(map[uint16]struct{}, len(authorities))
	for _, a := range authorities {
		if a.Stake == 0 {
			return nil, fmt.Errorf("authority %s has zero stake", a.ID)
		}
		if _, dup := byID[a.ID]; dup {
			return nil, fmt.Errorf("duplicate authority %s", a.ID)
		}
		if _, dup := indices[a.Index]; dup {
			return nil, fmt.Errorf("duplicate authority index %d", a.Index)
		}
		cp := *a
		byID[a.ID] = &cp
		indices[a.Index] = struct{}{}
		sorted = append(sorted, &cp)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	return &Committee{
		epoch:       epoch,
		authorities: sorted,
		byID:        byID,
		totalStake:  sorted.TotalStake(),
	}, nil
}

// Epoch returns the epoch counter this committee belongs to.
func (c *Committee) Epoch() uint64 {
	return c.epoch
}

// Authorities returns the committee members ordered by index.
func (c *Committee) Authorities() AuthorityList {
	dup := make(AuthorityList, len(c.authorities))
	copy(dup, c.authorities)
	return dup
}

// Size returns the number of committee members.
func (c *Committee) Size() int {
	return len(c.authorities)
}

// TotalStake returns the total stake of the committee.
func (c *Committee) TotalStake() uint64 {
	return c.totalStake
}

// ByID returns the authority with the given identifier.
func (c *Committee) ByID(id AuthorityID) (*Authority, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// ByIndex returns the authority with the given committee index.
func (c *Committee) ByIndex(index uint16) (*Authority, bool) {
	for _, a := range c.authorities {
		if a.Index == index {
			return a, true
		}
	}
	return nil, false
}

// Contains returns true if the identifier belongs to a committee member.
func (c *Committee) Contains(id AuthorityID) bool {
	_, ok := c.byID[id]
	return ok
}

// StakeOf returns the stake of the given authority, zero for non-members.
func (c *Committee) StakeOf(id AuthorityID) uint64 {
	a, ok := c.byID[id]
	if !ok {
		return 0
	}
	return a.Stake
}

// StakeOfSet returns the summed stake of the distinct members among ids.
func (c *Committee) StakeOfSet(ids map[AuthorityID]struct{}) uint64 {
	var total uint64
	for id := range ids {
		total += c.StakeOf(id)
	}
	return total
}

// QuorumThreshold is the smallest stake strictly greater than two thirds of the
// total stake.
func (c *Committee) QuorumThreshold() uint64 {
	return c.totalStake*2/3 + 1
}

// ValidityThreshold is the smallest stake strictly greater than one third of the
// total stake, i.e. a set that contains at least one honest authority.
func (c *Committee) ValidityThreshold() uint64 {
	return c.totalStake/3 + 1
}
