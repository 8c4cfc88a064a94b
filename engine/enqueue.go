package engine

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// Message is an inbound message together with the authority it originates
// from.
type Message struct {
	OriginID mpc.AuthorityID
	Payload  interface{}
}

// MessageStore is the interface to abstract how messages are buffered in
// memory before being handled by the engine.
type MessageStore interface {
	// Put adds the message to the store. It returns false if the message was dropped.
	Put(*Message) bool
	// Get retrieves the next message from the store. It returns false if the store is empty.
	Get() (*Message, bool)
}

type Pattern struct {
	// Match is a function to match a message to this pattern, typically by payload type.
	Match MatchFunc
	// Map is a function to apply to messages before storing them. If not provided, then the message won't get mapped.
	Map MapFunc
	// Store is an abstract message store where we will store the message upon receipt.
	Store MessageStore
}

type MatchFunc func(*Message) bool

// MapFunc converts a message before storing it. Returning false drops the
// message.
type MapFunc func(*Message) (*Message, bool)

// MessageHandler routes each inbound message to the store of the first
// matching pattern and notifies the consumer.
type MessageHandler struct {
	log      zerolog.Logger
	notifier Notifier
	patterns []Pattern
}

func NewMessageHandler(log zerolog.Logger, notifier Notifier, patterns ...Pattern) *MessageHandler {
	return &MessageHandler{
		log:      log.With().Str("component", "message_handler").Logger(),
		notifier: notifier,
		patterns: patterns,
	}
}

// Process iterates over the internal processing patterns and determines if
// the payload matches. The _first_ matching pattern processes the payload.
// Returns
//   - IncompatibleInputTypeError if no matching processor was found
//   - All other errors are potential symptoms of internal state corruption or
//     bugs (fatal).
func (e *MessageHandler) Process(originID mpc.AuthorityID, payload interface{}) error {
	msg := &Message{
		OriginID: originID,
		Payload:  payload,
	}

	for _, pattern := range e.patterns {
		if !pattern.Match(msg) {
			continue
		}

		var keep bool
		if pattern.Map != nil {
			msg, keep = pattern.Map(msg)
			if !keep {
				return nil
			}
		}

		ok := pattern.Store.Put(msg)
		if !ok {
			e.log.Warn().
				Str("msg_type", fmt.Sprintf("%T", payload)).
				Hex("origin_id", originID[:]).
				Msg("failed to store message - discarding")
			return nil
		}
		e.notifier.Notify()

		// message can only be matched by one pattern, and processed by one handler
		return nil
	}

	return fmt.Errorf("no matching processor for message of type %T from origin %x: %w", payload, originID[:],
		IncompatibleInputTypeError)
}

func (e *MessageHandler) GetNotifier() <-chan struct{} {
	return e.notifier.Channel()
}
