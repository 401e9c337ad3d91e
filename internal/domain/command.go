package domain

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// sgrPattern matches ANSI color/style (SGR) sequences left over in a line.
var sgrPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

// NormalizeLine classifies a candidate terminal line into a Command. It
// returns false for lines that carry no command: empty lines and bare shell
// prompts. Raw keeps the sudo prefix; Normalized drops it, so the two fields
// diverge only by the prefix and surrounding whitespace.
func NormalizeLine(sessionID uuid.UUID, line string, timestamp float64) (Command, bool) {
	line = sgrPattern.ReplaceAllString(line, "")
	line = strings.TrimSpace(line)

	if line == "" || strings.HasSuffix(line, "$") || strings.HasSuffix(line, "#") {
		return Command{}, false
	}

	normalized := line
	sudo := strings.HasPrefix(line, "sudo ")
	if sudo {
		normalized = strings.TrimSpace(line[len("sudo "):])
		if normalized == "" {
			return Command{}, false
		}
	}

	return Command{
		SessionID:  sessionID,
		Raw:        line,
		Normalized: normalized,
		Cwd:        "/",
		User:       "root",
		Sudo:       sudo,
		Timestamp:  timestamp,
	}, true
}
