package capture

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

func TestLineBufferSplitsOnNewlines(t *testing.T) {
	r := &LineBufferReconstructor{}
	events := []domain.RawEvent{
		{Time: 1.0, Kind: domain.KindOutput, Data: "mkdir demo\nls"},
		{Time: 2.0, Kind: domain.KindOutput, Data: " -la\n"},
	}

	got, err := r.Reconstruct(events)
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	want := []domain.ReconstructedCommand{
		{Text: "mkdir demo", Timestamp: 0.0, Sequence: 0},
		{Text: "ls -la", Timestamp: 1.0, Sequence: 1},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("commands mismatch (-want +got):\n%s", diff)
	}
}

func TestLineBufferAppliesEditing(t *testing.T) {
	r := &LineBufferReconstructor{}
	events := []domain.RawEvent{
		{Time: 0.0, Kind: domain.KindOutput, Data: "\x1b[32mgit\x1b[0m stattus\b\b\bus\n"},
	}

	got, err := r.Reconstruct(events)
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "git status" {
		t.Fatalf("unexpected commands: %+v", got)
	}
}

func TestLineBufferFlushesTrailingSegment(t *testing.T) {
	r := &LineBufferReconstructor{}
	events := []domain.RawEvent{
		{Time: 1.0, Kind: domain.KindOutput, Data: "echo one\n"},
		{Time: 3.0, Kind: domain.KindOutput, Data: "echo two"},
	}

	got, err := r.Reconstruct(events)
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 commands, got %+v", got)
	}
	if got[1].Text != "echo two" || got[1].Timestamp != 2.0 {
		t.Fatalf("unexpected trailing command: %+v", got[1])
	}
}

func TestLineBufferIgnoresInputEvents(t *testing.T) {
	r := &LineBufferReconstructor{}
	events := []domain.RawEvent{
		{Time: 0.0, Kind: domain.KindInput, Data: "typed\n"},
		{Time: 1.0, Kind: domain.KindOutput, Data: "shown\n"},
	}

	got, err := r.Reconstruct(events)
	if err != nil {
		t.Fatalf("Reconstruct error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "shown" {
		t.Fatalf("unexpected commands: %+v", got)
	}
}

func TestLineBufferMaxEvents(t *testing.T) {
	r := &LineBufferReconstructor{MaxEvents: 1}
	events := []domain.RawEvent{
		{Time: 0.0, Kind: domain.KindOutput, Data: "one\ntwo\n"},
	}

	_, err := r.Reconstruct(events)
	if err == nil || !strings.Contains(err.Error(), "event count exceeds maximum allowed limit") {
		t.Fatalf("expected limit error, got %v", err)
	}
}
