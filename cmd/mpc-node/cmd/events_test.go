package cmd

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

func TestReadEvents(t *testing.T) {
	input := `
# presign for wallet 1
{"kind": "presign_first_round", "event_id": "0a0b", "input": "c0ffee"}

{"kind": "sign", "event_id": "0c", "input": ""}
`
	events, err := readEvents(strings.NewReader(input), 9)
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, mpc.PresignFirstRound, events[0].SessionKind())
	assert.Equal(t, uint64(9), events[0].SessionEpoch())
	assert.Equal(t, []byte{0xc0, 0xff, 0xee}, events[0].PublicInput())
	assert.Equal(t, mpc.DeriveSessionIdentifier(9, mpc.PresignFirstRound.String(), []byte{0x0a, 0x0b}), events[0].SessionIdentifier())

	assert.Equal(t, mpc.Sign, events[1].SessionKind())
	assert.Empty(t, events[1].PublicInput())
}

func TestReadEvents_Invalid(t *testing.T) {
	cases := map[string]string{
		"json":     `{"kind": "sign"`,
		"kind":     `{"kind": "transfer", "event_id": "01"}`,
		"event id": `{"kind": "sign", "event_id": "zz"}`,
		"no id":    `{"kind": "sign"}`,
		"input":    `{"kind": "sign", "event_id": "01", "input": "0"}`,
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := readEvents(strings.NewReader(line), 1)
			assert.Error(t, err)
		})
	}
}

func TestReadEventsFile_NoPath(t *testing.T) {
	events, err := readEventsFile("", 1)
	require.NoError(t, err)
	assert.Empty(t, events)
}
