package capture

import (
	"strings"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

// DefaultPromptDenylist lists window-title payloads emitted by shell prompt
// integrations rather than by executed commands.
var DefaultPromptDenylist = []string{"bash", "zsh", "sh", "fish", "cd"}

// TitleReconstructor recovers commands by harvesting OSC window-title
// payloads from output events. Shell integration conventions set the title to
// the command being executed, which survives even when the typed input is
// mangled by editing and echo.
//
// The command's timestamp is taken from the nearest preceding Enter keypress
// (an input event whose payload is exactly carriage return); the title
// event's own timestamp is the fallback.
type TitleReconstructor struct {
	// Denylist holds title payloads to skip, typically shell prompts.
	Denylist []string
	// MaxEvents bounds the emitted command count; 0 means DefaultMaxEvents.
	MaxEvents int
}

// Reconstruct implements ports.Reconstructor.
func (r *TitleReconstructor) Reconstruct(events []domain.RawEvent) ([]domain.ReconstructedCommand, error) {
	limit := r.MaxEvents
	if limit <= 0 {
		limit = DefaultMaxEvents
	}
	denied := make(map[string]struct{}, len(r.Denylist))
	for _, d := range r.Denylist {
		denied[d] = struct{}{}
	}

	base := baseTime(events)
	var out []domain.ReconstructedCommand
	for i, ev := range events {
		if ev.Kind != domain.KindOutput {
			continue
		}
		title, ok := ExtractTitle(ev.Data)
		if !ok {
			continue
		}
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}
		if _, skip := denied[title]; skip {
			continue
		}

		ts := ev.Time
		for j := i - 1; j >= 0; j-- {
			if events[j].Kind == domain.KindInput && events[j].Data == "\r" {
				ts = events[j].Time
				break
			}
		}

		if len(out) >= limit {
			return nil, domain.NewParseError(0, "event count exceeds maximum allowed limit (%d)", limit)
		}
		out = append(out, domain.ReconstructedCommand{
			Text:      title,
			Timestamp: ts - base,
			Sequence:  len(out),
		})
	}
	return out, nil
}
