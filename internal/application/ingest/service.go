// Package ingest manages session creation, recording upload and event
// editing.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// DefaultMaxUploadBytes caps recording uploads before the parser runs.
const DefaultMaxUploadBytes = 10 * 1024 * 1024

// Service ingests terminal sessions.
type Service struct {
	Repo   ports.SessionRepository
	Parser ports.CaptureParser
	Store  ports.ObjectStore
	Logger ports.Logger

	// MaxUploadBytes caps recording size; 0 means DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

// EventPatch carries the mutable fields of an event update; nil fields are
// left unchanged.
type EventPatch struct {
	Timestamp *float64
	Kind      *domain.EventKind
	Data      *string
}

// BatchUpdate is one entry of a batch event update.
type BatchUpdate struct {
	ID      uuid.UUID
	Version int
	Patch   EventPatch
}

// BatchResult reports the outcome of one batch entry. Err is empty on
// success.
type BatchResult struct {
	ID    uuid.UUID
	Event domain.Event
	Err   string
}

// CreateSession creates a new session in the created state.
func (s *Service) CreateSession(ctx context.Context, name string, metadata map[string]any) (domain.Session, error) {
	return s.Repo.CreateSession(ctx, domain.NewSession(name, metadata))
}

// SaveEvents persists caller-supplied events and marks the session uploaded.
func (s *Service) SaveEvents(ctx context.Context, sessionID uuid.UUID, events []domain.Event) error {
	session, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	for i := range events {
		if events[i].ID == uuid.Nil {
			events[i].ID = uuid.New()
		}
		events[i].SessionID = sessionID
		if events[i].Version == 0 {
			events[i].Version = 1
		}
	}
	session.Status = domain.StatusUploaded
	if _, err := s.Repo.UpdateSession(ctx, session); err != nil {
		return err
	}
	return s.Repo.SaveEvents(ctx, events)
}

// UploadCast validates, stores and parses a recording, persisting one event
// per reconstructed command. The raw recording is kept in the object store
// under the session's recording key.
func (s *Service) UploadCast(ctx context.Context, sessionID uuid.UUID, data []byte, filename string) ([]domain.Event, error) {
	session, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	limit := s.MaxUploadBytes
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("file size (%d bytes) exceeds maximum (%d bytes)", len(data), limit)
	}

	commands, err := s.Parser.ParseEvents(data)
	if err != nil {
		return nil, fmt.Errorf("invalid .cast file format: %w", err)
	}

	key := RecordingKey(sessionID)
	if _, err := s.Store.Upload(ctx, key, data, "application/json"); err != nil {
		return nil, err
	}

	events := make([]domain.Event, 0, len(commands))
	for _, cmd := range commands {
		events = append(events, domain.Event{
			ID:        uuid.New(),
			SessionID: sessionID,
			Timestamp: cmd.Timestamp,
			Kind:      domain.KindOutput,
			Data:      cmd.Text,
			Sequence:  cmd.Sequence,
			Version:   1,
		})
	}
	if err := s.Repo.SaveEvents(ctx, events); err != nil {
		return nil, err
	}

	if session.Metadata == nil {
		session.Metadata = map[string]any{}
	}
	session.Metadata["cast_file_key"] = key
	session.Metadata["cast_filename"] = filename
	session.Status = domain.StatusUploaded
	if _, err := s.Repo.UpdateSession(ctx, session); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("recording uploaded", map[string]interface{}{
			"session_id": sessionID.String(),
			"events":     len(events),
		})
	}
	return events, nil
}

// UpdateEvent applies a patch to a single event guarded by its expected
// version. The repository surfaces domain.ErrVersionConflict on stale
// versions and domain.ErrEventNotFound for unknown events; an event belonging
// to a different session is reported as not found for this session.
func (s *Service) UpdateEvent(ctx context.Context, sessionID, eventID uuid.UUID, patch EventPatch, expectedVersion int) (domain.Event, error) {
	event, err := s.Repo.GetEvent(ctx, eventID)
	if err != nil {
		return domain.Event{}, err
	}
	if event.SessionID != sessionID {
		return domain.Event{}, fmt.Errorf("event %s does not belong to session %s: %w", eventID, sessionID, domain.ErrEventNotFound)
	}

	if patch.Timestamp != nil {
		event.Timestamp = *patch.Timestamp
	}
	if patch.Kind != nil {
		event.Kind = *patch.Kind
	}
	if patch.Data != nil {
		event.Data = *patch.Data
	}

	return s.Repo.UpdateEvent(ctx, event, expectedVersion)
}

// UpdateEventsBatch applies patches independently so one conflict does not
// fail the rest.
func (s *Service) UpdateEventsBatch(ctx context.Context, sessionID uuid.UUID, updates []BatchUpdate) []BatchResult {
	results := make([]BatchResult, 0, len(updates))
	for _, update := range updates {
		event, err := s.UpdateEvent(ctx, sessionID, update.ID, update.Patch, update.Version)
		if err != nil {
			results = append(results, BatchResult{ID: update.ID, Err: err.Error()})
			continue
		}
		results = append(results, BatchResult{ID: update.ID, Event: event})
	}
	return results
}

// ExtractCommands replays the session's stored events through a running line
// buffer and normalizes every completed line into a Command. Extraction is
// idempotent: previously derived commands are replaced.
func (s *Service) ExtractCommands(ctx context.Context, sessionID uuid.UUID) ([]domain.Command, error) {
	if _, err := s.Repo.GetSession(ctx, sessionID); err != nil {
		return nil, err
	}
	events, err := s.Repo.ListEvents(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var commands []domain.Command
	current := ""
	for _, ev := range events {
		if ev.Kind != domain.KindOutput {
			continue
		}
		current += ev.Data
		if strings.ContainsAny(current, "\n\r") {
			lines := strings.Split(current, "\n")
			for _, line := range lines[:len(lines)-1] {
				if cmd, ok := domain.NormalizeLine(sessionID, line, ev.Timestamp); ok {
					commands = append(commands, cmd)
				}
			}
			current = lines[len(lines)-1]
		} else {
			if cmd, ok := domain.NormalizeLine(sessionID, current, ev.Timestamp); ok {
				commands = append(commands, cmd)
			}
			current = ""
		}
	}
	if current != "" {
		ts := 0.0
		if len(events) > 0 {
			ts = events[len(events)-1].Timestamp
		}
		if cmd, ok := domain.NormalizeLine(sessionID, current, ts); ok {
			commands = append(commands, cmd)
		}
	}

	if err := s.Repo.DeleteCommands(ctx, sessionID); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveCommands(ctx, commands); err != nil {
		return nil, err
	}
	return commands, nil
}

// RecordingKey is the object-store key of a session's raw recording.
func RecordingKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("sessions/%s/recording.cast", sessionID)
}
