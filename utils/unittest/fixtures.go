package unittest

import (
	crand "crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

func RandomBytes(n int) []byte {
	b := make([]byte, n)
	read, err := crand.Read(b)
	if err != nil {
		panic("cannot read random bytes")
	}
	if read != n {
		panic("cannot read enough random bytes")
	}
	return b
}

// SessionIDFixture returns a random session identifier.
func SessionIDFixture() mpc.SessionIdentifier {
	var id mpc.SessionIdentifier
	copy(id[:], RandomBytes(mpc.IdentifierLen))
	return id
}

// SessionIDListFixture returns n distinct random session identifiers.
func SessionIDListFixture(n int) []mpc.SessionIdentifier {
	ids := make([]mpc.SessionIdentifier, 0, n)
	for i := 0; i < n; i++ {
		ids = append(ids, SessionIDFixture())
	}
	return ids
}

// AuthorityIDFixture returns a random authority identifier.
func AuthorityIDFixture() mpc.AuthorityID {
	var id mpc.AuthorityID
	copy(id[:], RandomBytes(mpc.IdentifierLen))
	return id
}

// AuthorityFixture returns an authority with the given index and a stake of 1.
func AuthorityFixture(index uint16, opts ...func(*mpc.Authority)) *mpc.Authority {
	a := &mpc.Authority{
		ID:    AuthorityIDFixture(),
		Index: index,
		Stake: 1,
	}
	for _, apply := range opts {
		apply(a)
	}
	return a
}

// WithStake sets the stake of the authority fixture.
func WithStake(stake uint64) func(*mpc.Authority) {
	return func(a *mpc.Authority) {
		a.Stake = stake
	}
}

// AuthorityListFixture returns n authorities indexed 0..n-1.
func AuthorityListFixture(n int, opts ...func(*mpc.Authority)) mpc.AuthorityList {
	list := make(mpc.AuthorityList, 0, n)
	for i := 0; i < n; i++ {
		list = append(list, AuthorityFixture(uint16(i), opts...))
	}
	return list
}

// CommitteeFixture returns a committee of n authorities with a stake of 1 each.
func CommitteeFixture(t testing.TB, epoch uint64, n int, opts ...func(*mpc.Authority)) *mpc.Committee {
	committee, err := mpc.NewCommittee(epoch, AuthorityListFixture(n, opts...))
	require.NoError(t, err)
	return committee
}

// MaliciousReportFixture returns a report accusing the given authorities in a
// random session.
func MaliciousReportFixture(round uint64, accused ...mpc.AuthorityID) mpc.MaliciousReport {
	return mpc.NewMaliciousReport(SessionIDFixture(), round, accused)
}

// StartSessionEventFixture returns the shared fields of a session-creation event.
func StartSessionEventFixture(epoch uint64, input []byte) mpc.StartSessionEvent {
	return mpc.StartSessionEvent{
		EventID: RandomBytes(32),
		Epoch:   epoch,
		Input:   input,
	}
}

// SessionRequestFixture returns a creation event of the given kind.
func SessionRequestFixture(kind mpc.ProtocolKind, epoch uint64, input []byte) mpc.SessionRequest {
	event, err := mpc.NewSessionRequest(kind, StartSessionEventFixture(epoch, input))
	if err != nil {
		panic(err)
	}
	return event
}
