// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and
// external adapters (infrastructure). The application depends on these
// abstractions, never on concrete databases, HTTP clients or AI services.
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// CaptureParser turns raw recording bytes into reconstructed commands.
// Parsing is atomic: it either returns the full command list or an error with
// zero partial results.
type CaptureParser interface {
	ParseEvents(data []byte) ([]domain.ReconstructedCommand, error)
}

// Reconstructor is one strategy for recovering commands from an ordered raw
// event stream.
type Reconstructor interface {
	Reconstruct(events []domain.RawEvent) ([]domain.ReconstructedCommand, error)
}

// Translator maps a normalized command to an automation task. It reports
// false only for commands whose normalized text is empty; every other command
// yields a task, degrading to a low-confidence shell passthrough.
type Translator interface {
	Translate(command domain.Command) (domain.Task, bool)
}

// SessionRepository persists sessions, their event logs and derived commands.
// Event updates are guarded by an expected version: a stale version yields
// domain.ErrVersionConflict, a missing event domain.ErrEventNotFound.
type SessionRepository interface {
	CreateSession(ctx context.Context, session domain.Session) (domain.Session, error)
	GetSession(ctx context.Context, id uuid.UUID) (domain.Session, error)
	UpdateSession(ctx context.Context, session domain.Session) (domain.Session, error)

	SaveEvents(ctx context.Context, events []domain.Event) error
	ListEvents(ctx context.Context, sessionID uuid.UUID) ([]domain.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (domain.Event, error)
	UpdateEvent(ctx context.Context, event domain.Event, expectedVersion int) (domain.Event, error)

	SaveCommands(ctx context.Context, commands []domain.Command) error
	ListCommands(ctx context.Context, sessionID uuid.UUID) ([]domain.Command, error)
	DeleteCommands(ctx context.Context, sessionID uuid.UUID) error
}

// ObjectStore persists opaque artifacts addressed by key.
type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	PresignURL(ctx context.Context, key string, expiresIn time.Duration) (string, error)
}

// RoleGenerator writes an Ansible role directory structure.
type RoleGenerator interface {
	Generate(role domain.Role, outputDir string) error
}

// Cleaner is the optional AI cleanup collaborator. The core consumes only its
// structured output shape, never its internal reasoning.
type Cleaner interface {
	CleanCommands(ctx context.Context, sessionID uuid.UUID, commands []domain.Command) ([]domain.CleanedCommand, domain.CleaningReport, error)
}

// Logger provides structured logging abstraction for the application layer.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
