package capture

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

// decodeRecording validates the recording format and returns the raw event
// stream in file order. Line numbers in errors are 1-indexed with the header
// as line 1. Decoding is all-or-nothing: any malformed line fails the whole
// recording.
func decodeRecording(data []byte) ([]domain.RawEvent, error) {
	if !utf8.Valid(data) {
		return nil, &domain.ParseError{Reason: "invalid UTF-8 encoding in .cast file"}
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return nil, &domain.ParseError{Reason: "empty .cast file"}
	}
	lines := strings.Split(text, "\n")

	if err := validateHeader(lines[0]); err != nil {
		return nil, err
	}

	events := make([]domain.RawEvent, 0, len(lines)-1)
	for i, line := range lines[1:] {
		lineNo := i + 2
		if strings.TrimSpace(line) == "" {
			continue
		}
		ev, err := decodeEventLine(line, lineNo)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func validateHeader(line string) error {
	dec := json.NewDecoder(strings.NewReader(line))
	dec.UseNumber()
	var header any
	if err := dec.Decode(&header); err != nil {
		return domain.NewParseError(1, "invalid JSON header in .cast file: %v", err)
	}
	if dec.More() {
		// Decode stops at the first value; anything after it makes the
		// line malformed.
		return domain.NewParseError(1, "invalid JSON header in .cast file: trailing data after header")
	}
	obj, ok := header.(map[string]any)
	if !ok {
		return domain.NewParseError(1, "header must be a JSON object")
	}

	version, present := obj["version"]
	if !present {
		return domain.NewParseError(1, "unsupported asciinema format version: missing (only versions 2 and 3 are supported)")
	}
	num, ok := version.(json.Number)
	if ok {
		// Float-typed versions (e.g. 2.0) are rejected: Int64 only
		// succeeds for integer literals.
		if v, err := num.Int64(); err == nil && (v == 2 || v == 3) {
			return nil
		}
	}
	return domain.NewParseError(1, "unsupported asciinema format version: %v (only versions 2 and 3 are supported)", version)
}

func decodeEventLine(line string, lineNo int) (domain.RawEvent, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(line)))
	dec.UseNumber()
	var arr []any
	if err := dec.Decode(&arr); err != nil {
		return domain.RawEvent{}, domain.NewParseError(lineNo, "invalid JSON: %v", err)
	}
	if dec.More() {
		return domain.RawEvent{}, domain.NewParseError(lineNo, "invalid JSON: trailing data after event")
	}
	if len(arr) < 2 {
		return domain.RawEvent{}, domain.NewParseError(lineNo, "event must be an array with at least [timestamp, event_type]")
	}

	num, ok := arr[0].(json.Number)
	if !ok {
		return domain.RawEvent{}, domain.NewParseError(lineNo, "timestamp must be a number")
	}
	ts, err := num.Float64()
	if err != nil {
		return domain.RawEvent{}, domain.NewParseError(lineNo, "timestamp must be a number")
	}

	kindStr, ok := arr[1].(string)
	if !ok {
		return domain.RawEvent{}, domain.NewParseError(lineNo, "event type must be a string")
	}
	kind := domain.EventKind(kindStr)

	var data string
	switch kind {
	case domain.KindExit:
		// Exit code is optional and may be numeric; it defaults to "0"
		// and is never interpreted as a command.
		data = "0"
		if len(arr) > 2 {
			switch v := arr[2].(type) {
			case string:
				data = v
			case json.Number:
				data = v.String()
			default:
				return domain.RawEvent{}, domain.NewParseError(lineNo, "exit event data must be a string or number")
			}
		}
	case domain.KindInput, domain.KindOutput:
		if len(arr) < 3 {
			return domain.RawEvent{}, domain.NewParseError(lineNo, "output/input event must have data field")
		}
		data, ok = arr[2].(string)
		if !ok {
			return domain.RawEvent{}, domain.NewParseError(lineNo, "data must be a string")
		}
	default:
		return domain.RawEvent{}, domain.NewParseError(lineNo, "invalid event type %q, must be 'i', 'o', or 'x'", kindStr)
	}

	return domain.RawEvent{Time: ts, Kind: kind, Data: data}, nil
}

// baseTime returns the minimum timestamp across all events, so the first
// session event normalizes to exactly zero.
func baseTime(events []domain.RawEvent) float64 {
	if len(events) == 0 {
		return 0
	}
	base := events[0].Time
	for _, ev := range events[1:] {
		if ev.Time < base {
			base = ev.Time
		}
	}
	return base
}
