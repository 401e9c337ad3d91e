package capture

import (
	"github.com/pbooth01/cli2ansible/internal/domain"
)

// LineBufferReconstructor recovers candidate command lines by replaying the
// output stream through a running line buffer. Each completed line is edited
// (escape sequences stripped, backspaces applied) and emitted; the command
// normalizer downstream decides which candidates are actual commands.
type LineBufferReconstructor struct {
	// MaxEvents bounds the emitted line count; 0 means DefaultMaxEvents.
	MaxEvents int
}

// Reconstruct implements ports.Reconstructor.
func (r *LineBufferReconstructor) Reconstruct(events []domain.RawEvent) ([]domain.ReconstructedCommand, error) {
	limit := r.MaxEvents
	if limit <= 0 {
		limit = DefaultMaxEvents
	}

	base := baseTime(events)
	var (
		out     []domain.ReconstructedCommand
		buffer  string
		lastOut float64
	)

	emit := func(segment string, ts float64) error {
		line := EditLine(segment)
		if line == "" {
			return nil
		}
		if len(out) >= limit {
			return domain.NewParseError(0, "event count exceeds maximum allowed limit (%d)", limit)
		}
		out = append(out, domain.ReconstructedCommand{
			Text:      line,
			Timestamp: ts - base,
			Sequence:  len(out),
		})
		return nil
	}

	for _, ev := range events {
		if ev.Kind != domain.KindOutput {
			continue
		}
		lastOut = ev.Time
		buffer += ev.Data
		for {
			idx := indexNewline(buffer)
			if idx < 0 {
				break
			}
			if err := emit(buffer[:idx], ev.Time); err != nil {
				return nil, err
			}
			buffer = buffer[idx+1:]
		}
	}

	if buffer != "" {
		if err := emit(buffer, lastOut); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func indexNewline(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return i
		}
	}
	return -1
}
