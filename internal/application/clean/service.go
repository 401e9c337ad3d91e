// Package clean runs the optional AI cleanup pass over a session's commands.
package clean

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// DefaultMaxCommands bounds how many commands are sent to the cleaner.
const DefaultMaxCommands = 500

// Service cleans terminal sessions through an injected Cleaner collaborator.
// The cleaner's structured output is consumed as-is; its internal reasoning
// is opaque to this service.
type Service struct {
	Repo    ports.SessionRepository
	Cleaner ports.Cleaner

	// MaxCommands caps cleanable sessions; 0 means DefaultMaxCommands.
	MaxCommands int
}

// CleanCommands removes duplicates and error corrections from the session's
// command list via the cleaner.
func (s *Service) CleanCommands(ctx context.Context, sessionID uuid.UUID) ([]domain.CleanedCommand, domain.CleaningReport, error) {
	if _, err := s.Repo.GetSession(ctx, sessionID); err != nil {
		return nil, domain.CleaningReport{}, err
	}

	commands, err := s.Repo.ListCommands(ctx, sessionID)
	if err != nil {
		return nil, domain.CleaningReport{}, err
	}
	if len(commands) == 0 {
		return []domain.CleanedCommand{}, domain.CleaningReport{
			SessionID:         sessionID,
			CleaningRationale: "No commands found in session",
			GeneratedAt:       time.Now().UTC(),
		}, nil
	}

	limit := s.MaxCommands
	if limit <= 0 {
		limit = DefaultMaxCommands
	}
	if len(commands) > limit {
		return nil, domain.CleaningReport{}, fmt.Errorf("session has %d commands, maximum %d allowed for cleaning", len(commands), limit)
	}

	return s.Cleaner.CleanCommands(ctx, sessionID, commands)
}

// EssentialCommands returns the commands needed to reproduce the session,
// with duplicates filtered out.
func (s *Service) EssentialCommands(ctx context.Context, sessionID uuid.UUID) ([]string, error) {
	cleaned, _, err := s.CleanCommands(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, cmd := range cleaned {
		if !cmd.IsDuplicate {
			out = append(out, cmd.Command)
		}
	}
	return out, nil
}
