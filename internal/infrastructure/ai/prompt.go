package ai

import (
	"fmt"
	"strings"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

const systemPrompt = "You are a terminal session analyzer. Respond only with valid JSON."

// cleaningPrompt lists the commands and asks the model for a structured
// essential/removed verdict.
func cleaningPrompt(commands []domain.Command) string {
	var list strings.Builder
	for i, cmd := range commands {
		fmt.Fprintf(&list, "%d. %s (timestamp: %g)\n", i+1, cmd.Raw, cmd.Timestamp)
	}

	return fmt.Sprintf(`Analyze the following terminal session commands and identify which ones are essential.

Commands:
%s
Your task:
1. Identify duplicate commands (same command run multiple times)
2. Identify error corrections (user made a typo and then fixed it)
3. Keep only the essential commands needed to reproduce the desired outcome

Return a JSON response with this structure:
{
  "essential_commands": [
    {
      "command": "the actual command",
      "reason": "why this command is essential",
      "is_duplicate": false,
      "is_error_correction": false,
      "first_occurrence_index": 0
    }
  ],
  "removed_commands": [
    {
      "command": "the removed command",
      "reason": "why it was removed (duplicate/error correction)",
      "is_duplicate": true,
      "is_error_correction": false,
      "original_index": 5
    }
  ],
  "rationale": "overall explanation of cleaning decisions"
}

Focus on:
- Commands that accomplish the goal (keep)
- Obvious typos followed by corrections (remove the typo)
- Repeated identical commands (keep only first occurrence)
- Failed commands followed by successful ones (remove failures)`, list.String())
}
