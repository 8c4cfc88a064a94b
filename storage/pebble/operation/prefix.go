package operation

import (
	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

const (
	codeMPCOutput = 100
)

func makeKey(code byte, sessionID mpc.SessionIdentifier) []byte {
	key := make([]byte, 1+len(sessionID))
	key[0] = code
	copy(key[1:], sessionID[:])
	return key
}
