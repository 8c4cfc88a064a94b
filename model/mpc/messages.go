package mpc

import (
	"errors"
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub008/model/encoding/cbor"
)

// Message codes prefix every payload submitted to consensus. The code is the
// first byte of the payload; the rest is the CBOR encoding of the message.
const (
	CodeMin uint8 = iota
	CodeRoundMessage
	CodeMaliciousReport
	CodeOutputDigest
	CodeEndOfPublish
	CodeMax
)

// ErrInvalidEncoding is returned when a consensus payload cannot be decoded.
var ErrInvalidEncoding = errors.New("invalid encoding")

// RoundMessage is a validator's message for one round of one session.
type RoundMessage struct {
	SessionID SessionIdentifier
	Round     uint64
	Payload   []byte
}

// MaliciousReportMessage carries a validator's accusation.
type MaliciousReportMessage struct {
	Report MaliciousReport
}

// OutputDigestMessage announces the digest of a validator's locally computed
// output for a session.
type OutputDigestMessage struct {
	SessionID SessionIdentifier
	Digest    Digest
}

// EndOfPublishMessage signals that the sender has nothing left to publish for
// the epoch.
type EndOfPublishMessage struct {
	Epoch uint64
}

// EncodeConsensusMessage encodes one of the message types above into a payload
// suitable for submission to consensus.
func EncodeConsensusMessage(msg interface{}) ([]byte, error) {
	var code uint8
	switch msg.(type) {
	case *RoundMessage:
		code = CodeRoundMessage
	case *MaliciousReportMessage:
		code = CodeMaliciousReport
	case *OutputDigestMessage:
		code = CodeOutputDigest
	case *EndOfPublishMessage:
		code = CodeEndOfPublish
	default:
		return nil, fmt.Errorf("unsupported consensus message type %T", msg)
	}
	body, err := cbor.EncMode.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("could not encode %T: %w", msg, err)
	}
	return append([]byte{code}, body...), nil
}

// DecodeConsensusMessage is the inverse of EncodeConsensusMessage. It returns a
// pointer to one of the message types above.
func DecodeConsensusMessage(payload []byte) (interface{}, error) {
	if len(payload) == 0 {
		return nil, fmt.Errorf("empty payload: %w", ErrInvalidEncoding)
	}
	var msg interface{}
	switch payload[0] {
	case CodeRoundMessage:
		msg = new(RoundMessage)
	case CodeMaliciousReport:
		msg = new(MaliciousReportMessage)
	case CodeOutputDigest:
		msg = new(OutputDigestMessage)
	case CodeEndOfPublish:
		msg = new(EndOfPublishMessage)
	default:
		return nil, fmt.Errorf("unknown message code %d: %w", payload[0], ErrInvalidEncoding)
	}
	err := cbor.DecMode.Unmarshal(payload[1:], msg)
	if err != nil {
		return nil, fmt.Errorf("could not decode payload with code %d: %s: %w", payload[0], err, ErrInvalidEncoding)
	}
	return msg, nil
}
