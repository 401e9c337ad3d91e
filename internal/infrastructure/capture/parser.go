package capture

import (
	"fmt"
	"os"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

const (
	// DefaultMaxEvents caps how many commands a single parse may emit.
	DefaultMaxEvents = 100_000
	// DefaultMaxFileSize caps recording size before decoding is attempted.
	DefaultMaxFileSize = 10 * 1024 * 1024

	// StrategyTitles selects OSC window-title harvesting (the default).
	StrategyTitles = "titles"
	// StrategyLineBuffer selects output line-buffer replay.
	StrategyLineBuffer = "linebuffer"
)

// Parser validates a recording and runs the configured reconstruction
// strategy over its event stream. The zero value is not usable; construct
// with NewParser.
type Parser struct {
	strategy ports.Reconstructor
}

// NewParser builds a parser from configuration. An unknown strategy name
// falls back to title harvesting.
func NewParser(settings domain.ParserSettings) *Parser {
	denylist := settings.PromptDenylist
	if denylist == nil {
		denylist = DefaultPromptDenylist
	}
	var strategy ports.Reconstructor
	switch settings.Strategy {
	case StrategyLineBuffer:
		strategy = &LineBufferReconstructor{MaxEvents: settings.MaxEvents}
	default:
		strategy = &TitleReconstructor{Denylist: denylist, MaxEvents: settings.MaxEvents}
	}
	return &Parser{strategy: strategy}
}

// NewParserWithStrategy builds a parser around an explicit reconstructor.
func NewParserWithStrategy(strategy ports.Reconstructor) *Parser {
	return &Parser{strategy: strategy}
}

// ParseEvents implements ports.CaptureParser. It either returns the complete
// reconstructed command list or fails with a domain.ParseError; there is no
// partial result.
func (p *Parser) ParseEvents(data []byte) ([]domain.ReconstructedCommand, error) {
	events, err := decodeRecording(data)
	if err != nil {
		return nil, err
	}
	return p.strategy.Reconstruct(events)
}

// ParseCastFile reads and parses a recording from disk, capping the file size
// before any decoding happens.
func ParseCastFile(parser ports.CaptureParser, path string, maxFileSize int64) ([]domain.ReconstructedCommand, error) {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > maxFileSize {
		return nil, fmt.Errorf("file size (%d bytes) exceeds maximum allowed size (%d bytes)", info.Size(), maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parser.ParseEvents(data)
}

var _ ports.CaptureParser = (*Parser)(nil)
