package operation

import (
	"encoding/binary"
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

const (
	// codes for MPC session outputs
	codeMPCOutput = 100
)

func makePrefix(code byte, keys ...interface{}) []byte {
	prefix := make([]byte, 1)
	prefix[0] = code
	for _, key := range keys {
		prefix = append(prefix, b(key)...)
	}
	return prefix
}

func b(v interface{}) []byte {
	switch i := v.(type) {
	case uint8:
		return []byte{i}
	case uint32:
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, i)
		return b
	case uint64:
		b := make([]byte, 8)
		binary.BigEndian.PutUint64(b, i)
		return b
	case mpc.SessionIdentifier:
		return i[:]
	case mpc.AuthorityID:
		return i[:]
	default:
		panic(fmt.Sprintf("unsupported type to convert (%T)", v))
	}
}
