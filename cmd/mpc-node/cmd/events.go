package cmd

import (
	"bufio"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dwallet-labs/dwallet-network-sub008/model/mpc"
)

// eventRecord is one line of the events file.
type eventRecord struct {
	Kind    string `json:"kind"`
	EventID string `json:"event_id"`
	Input   string `json:"input"`
}

func (r eventRecord) toRequest(epoch uint64) (mpc.SessionRequest, error) {
	kind, err := mpc.ParseProtocolKind(r.Kind)
	if err != nil {
		return nil, err
	}
	eventID, err := hex.DecodeString(r.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event id: %w", err)
	}
	if len(eventID) == 0 {
		return nil, fmt.Errorf("missing event id")
	}
	input, err := hex.DecodeString(r.Input)
	if err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return mpc.NewSessionRequest(kind, mpc.StartSessionEvent{
		EventID: eventID,
		Epoch:   epoch,
		Input:   input,
	})
}

// readEvents parses session requests, one JSON object per line. Blank lines
// and lines starting with # are skipped.
func readEvents(r io.Reader, epoch uint64) ([]mpc.SessionRequest, error) {
	var events []mpc.SessionRequest
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var record eventRecord
		err := json.Unmarshal([]byte(text), &record)
		if err != nil {
			return nil, fmt.Errorf("line %d: could not decode event: %w", line, err)
		}
		event, err := record.toRequest(epoch)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, event)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read events: %w", err)
	}
	return events, nil
}

func readEventsFile(path string, epoch uint64) ([]mpc.SessionRequest, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open events file: %w", err)
	}
	defer f.Close()
	return readEvents(f, epoch)
}
