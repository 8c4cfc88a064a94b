package party

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// adapter translates between the generic session buffers and a backend round
// function. It holds no per-session state.
type adapter struct {
	kind  mpc.ProtocolKind
	round func(Input) (Result, error)
}

func newAdapter(kind mpc.ProtocolKind, round func(Input) (Result, error)) *adapter {
	return &adapter{kind: kind, round: round}
}

func (a *adapter) advance(req AdvanceRequest) (Outcome, []byte, error) {
	if req.Kind != a.kind {
		return Outcome{}, nil, fmt.Errorf("request for %s routed to %s adapter", req.Kind, a.kind)
	}
	if a.kind.RequiresNetworkKey() && len(req.NetworkKey) == 0 {
		return Outcome{}, nil, fmt.Errorf("network key not available for %s: %w", a.kind, ErrDependencyUnavailable)
	}
	if !a.kind.IsMultiRound() && req.Round > 0 {
		return Outcome{}, nil, fmt.Errorf("single-round protocol %s asked for round %d", a.kind, req.Round)
	}

	inbound := make(map[mpc.AuthorityID][]byte, len(req.Messages))
	malformed := &MalformedPayloadError{}
	if req.Round > 0 {
		for _, sender := range sortedSenders(req.Messages) {
			body, err := decodePayload(a.kind, req.Round-1, req.Messages[sender])
			if err != nil {
				malformed.add(sender, err)
				continue
			}
			inbound[sender] = body
		}
	}
	if !malformed.empty() {
		return Malicious(malformed, malformed.Senders...), req.PrivateState, nil
	}

	res, err := a.round(Input{
		SessionID:  req.SessionID,
		Kind:       req.Kind,
		Round:      req.Round,
		Public:     req.PublicInput,
		Inbound:    inbound,
		Private:    req.PrivateState,
		NetworkKey: req.NetworkKey,
		Committee:  req.Committee,
	})
	if err != nil {
		return Outcome{}, nil, fmt.Errorf("%s round %d failed: %w", a.kind, req.Round, err)
	}

	switch {
	case len(res.Malicious) > 0:
		return Malicious(fmt.Errorf("%s round %d rejected peer messages", a.kind, req.Round), res.Malicious...), res.Private, nil
	case res.Final:
		return FinalOutput(res.PublicOutput, res.PrivateOutput), res.Private, nil
	case !a.kind.IsMultiRound():
		return Outcome{}, nil, fmt.Errorf("single-round protocol %s produced no output", a.kind)
	default:
		payload, err := encodePayload(a.kind, req.Round, res.Message)
		if err != nil {
			return Outcome{}, nil, err
		}
		return OutgoingMessage(payload), res.Private, nil
	}
}

// sortedSenders returns the senders in a deterministic order, so that the
// accused set and backend inputs do not depend on map iteration.
func sortedSenders(messages map[mpc.AuthorityID][]byte) []mpc.AuthorityID {
	senders := make([]mpc.AuthorityID, 0, len(messages))
	for sender := range messages {
		senders = append(senders, sender)
	}
	sort.Slice(senders, func(i, j int) bool {
		return bytes.Compare(senders[i][:], senders[j][:]) < 0
	})
	return senders
}
