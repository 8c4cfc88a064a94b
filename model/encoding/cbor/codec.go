package cbor

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// EncMode is the deterministic CBOR encoding mode. Every validator must encode
// the same value to the same bytes, since encoded payloads are hashed and
// compared across the committee.
var EncMode = func() cbor.EncMode {
	mode, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Errorf("could not create deterministic cbor encoding mode: %w", err))
	}
	return mode
}()

// DecMode rejects duplicate map keys and bounds nesting so that adversarial
// payloads cannot blow up decoding.
var DecMode = func() cbor.DecMode {
	mode, err := cbor.DecOptions{
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
		MaxNestedLevels:  16,
		MaxArrayElements: 1 << 16,
		MaxMapPairs:      1 << 16,
	}.DecMode()
	if err != nil {
		panic(fmt.Errorf("could not create cbor decoding mode: %w", err))
	}
	return mode
}()
