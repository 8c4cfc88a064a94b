package party

import (
	"fmt"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// OutcomeType is the discriminant of Outcome.
type OutcomeType uint8

const (
	OutcomeOutgoingMessage OutcomeType = iota + 1
	OutcomeFinalOutput
	OutcomeMalicious
)

func (t OutcomeType) String() string {
	switch t {
	case OutcomeOutgoingMessage:
		return "outgoing_message"
	case OutcomeFinalOutput:
		return "final_output"
	case OutcomeMalicious:
		return "malicious"
	default:
		return fmt.Sprintf("unknown_outcome_%d", uint8(t))
	}
}

// Outcome is the result of one advance of a party. Exactly one of the payload
// groups is set, according to Type.
type Outcome struct {
	Type OutcomeType

	// Message is the encoded round payload to broadcast (OutcomeOutgoingMessage).
	Message []byte

	// PublicOutput and PrivateOutput are the final outputs (OutcomeFinalOutput).
	// PrivateOutput may be empty.
	PublicOutput  []byte
	PrivateOutput []byte

	// Parties are the accused authorities (OutcomeMalicious). Cause, if set,
	// describes why they were accused.
	Parties []mpc.AuthorityID
	Cause   error
}

func OutgoingMessage(payload []byte) Outcome {
	return Outcome{Type: OutcomeOutgoingMessage, Message: payload}
}

func FinalOutput(public, private []byte) Outcome {
	return Outcome{Type: OutcomeFinalOutput, PublicOutput: public, PrivateOutput: private}
}

func Malicious(cause error, parties ...mpc.AuthorityID) Outcome {
	return Outcome{Type: OutcomeMalicious, Parties: parties, Cause: cause}
}
