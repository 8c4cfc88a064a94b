package party

import (
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub008/model/encoding/cbor"
	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// RoundPayload is the envelope of a round message body. It binds the body to
// a protocol and round, so that a message replayed into another session kind
// or round is detected.
type RoundPayload struct {
	Kind  mpc.ProtocolKind
	Round uint64
	Body  []byte
}

func encodePayload(kind mpc.ProtocolKind, round uint64, body []byte) ([]byte, error) {
	b, err := cbor.EncMode.Marshal(&RoundPayload{Kind: kind, Round: round, Body: body})
	if err != nil {
		return nil, fmt.Errorf("could not encode round payload: %w", err)
	}
	return b, nil
}

func decodePayload(kind mpc.ProtocolKind, round uint64, data []byte) ([]byte, error) {
	var p RoundPayload
	err := cbor.DecMode.Unmarshal(data, &p)
	if err != nil {
		return nil, fmt.Errorf("could not decode round payload: %w", err)
	}
	if p.Kind != kind {
		return nil, fmt.Errorf("payload for protocol %s, expected %s", p.Kind, kind)
	}
	if p.Round != round {
		return nil, fmt.Errorf("payload for round %d, expected %d", p.Round, round)
	}
	return p.Body, nil
}

// EncodeRoundPayload wraps a body in a RoundPayload envelope.
func EncodeRoundPayload(kind mpc.ProtocolKind, round uint64, body []byte) ([]byte, error) {
	return encodePayload(kind, round, body)
}
