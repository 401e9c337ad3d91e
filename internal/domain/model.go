// Package domain defines the core entities of cli2ansible.
//
// A recorded terminal session is decoded into events, reconstructed into
// commands, and translated into idempotent automation tasks. The domain layer
// is independent of infrastructure concerns and represents pure business
// logic and data structures.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus tracks the session lifecycle.
type SessionStatus string

const (
	StatusCreated   SessionStatus = "created"
	StatusUploading SessionStatus = "uploading"
	StatusUploaded  SessionStatus = "uploaded"
	StatusCompiling SessionStatus = "compiling"
	StatusCompleted SessionStatus = "completed"
	StatusFailed    SessionStatus = "failed"
)

// TaskConfidence classifies how safe a translated task is.
type TaskConfidence string

const (
	// ConfidenceHigh marks a direct, structured module mapping.
	ConfidenceHigh TaskConfidence = "high"
	// ConfidenceMedium marks a structured mapping with residual risk.
	ConfidenceMedium TaskConfidence = "medium"
	// ConfidenceLow marks an opaque shell passthrough.
	ConfidenceLow TaskConfidence = "low"
)

// EventKind distinguishes the three recording event types.
type EventKind string

const (
	KindInput  EventKind = "i"
	KindOutput EventKind = "o"
	KindExit   EventKind = "x"
)

// Session is one recorded terminal interaction.
type Session struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Status    SessionStatus  `json:"status"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Duration  float64        `json:"duration"`
	Metadata  map[string]any `json:"metadata"`
}

// NewSession builds a session in the created state.
func NewSession(name string, metadata map[string]any) Session {
	if metadata == nil {
		metadata = map[string]any{}
	}
	now := time.Now().UTC()
	return Session{
		ID:        uuid.New(),
		Name:      name,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  metadata,
	}
}

// RawEvent is one decoded line of a recording, before reconstruction.
// Timestamps are relative seconds as provided per event; the source stream
// order is the event order.
type RawEvent struct {
	Time float64
	Kind EventKind
	Data string
}

// ReconstructedCommand is the parser's sole output unit: one command string
// recovered from the event stream, with a base-normalized timestamp and a
// dense sequence number assigned in emission order.
type ReconstructedCommand struct {
	Text      string
	Timestamp float64
	Sequence  int
}

// Event is a persisted terminal event with an optimistic-locking version.
// The version counter is checked and incremented by the repository, never by
// callers.
type Event struct {
	ID        uuid.UUID `json:"id"`
	SessionID uuid.UUID `json:"session_id"`
	Timestamp float64   `json:"timestamp"`
	Kind      EventKind `json:"event_type"`
	Data      string    `json:"data"`
	Sequence  int       `json:"sequence"`
	Version   int       `json:"version"`
}

// Command is a normalized shell command extracted from a session.
type Command struct {
	SessionID  uuid.UUID `json:"session_id"`
	Raw        string    `json:"raw"`
	Normalized string    `json:"normalized"`
	Cwd        string    `json:"cwd"`
	User       string    `json:"user"`
	Sudo       bool      `json:"sudo"`
	Timestamp  float64   `json:"timestamp"`
	ExitCode   *int      `json:"exit_code,omitempty"`
	Output     string    `json:"output"`
}

// Task is one translated automation task.
type Task struct {
	Name            string         `json:"name"`
	Module          string         `json:"module"`
	Args            *Args          `json:"args"`
	Confidence      TaskConfidence `json:"confidence"`
	OriginalCommand string         `json:"original_command"`
	ChangedWhen     string         `json:"changed_when,omitempty"`
	Creates         string         `json:"creates,omitempty"`
	Removes         string         `json:"removes,omitempty"`
	Become          bool           `json:"become"`
	Tags            []string       `json:"tags,omitempty"`
}

// Role is a generated Ansible role: an ordered task list plus supporting
// sections.
type Role struct {
	Name     string         `json:"name"`
	Tasks    []Task         `json:"tasks"`
	Handlers []Task         `json:"handlers,omitempty"`
	Vars     map[string]any `json:"vars,omitempty"`
	Defaults map[string]any `json:"defaults,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// CommandCount pairs a normalized command string with its occurrence count.
type CommandCount struct {
	Command string `json:"command"`
	Count   int    `json:"count"`
}

// Report aggregates translation statistics for a session.
type Report struct {
	SessionID               uuid.UUID      `json:"session_id"`
	TotalCommands           int            `json:"total_commands"`
	HighConfidence          int            `json:"high_confidence"`
	MediumConfidence        int            `json:"medium_confidence"`
	LowConfidence           int            `json:"low_confidence"`
	Warnings                []string       `json:"warnings"`
	SkippedCommands         []string       `json:"skipped_commands"`
	GeneratedAt             time.Time      `json:"generated_at"`
	ModuleBreakdown         map[string]int `json:"module_breakdown"`
	HighConfidencePercent   float64        `json:"high_confidence_percentage"`
	MediumConfidencePercent float64        `json:"medium_confidence_percentage"`
	LowConfidencePercent    float64        `json:"low_confidence_percentage"`
	SessionDurationSeconds  float64        `json:"session_duration_seconds"`
	MostCommonCommands      []CommandCount `json:"most_common_commands"`
	SudoCommandCount        int            `json:"sudo_command_count"`
}

// CleanedCommand is one command surviving (or removed by) AI cleanup.
type CleanedCommand struct {
	SessionID         uuid.UUID `json:"session_id"`
	Command           string    `json:"command"`
	Reason            string    `json:"reason"`
	FirstOccurrence   float64   `json:"first_occurrence"`
	OccurrenceCount   int       `json:"occurrence_count"`
	IsDuplicate       bool      `json:"is_duplicate"`
	IsErrorCorrection bool      `json:"is_error_correction"`
}

// CleaningReport summarizes an AI cleanup pass.
type CleaningReport struct {
	SessionID               uuid.UUID `json:"session_id"`
	OriginalCommandCount    int       `json:"original_command_count"`
	CleanedCommandCount     int       `json:"cleaned_command_count"`
	DuplicatesRemoved       int       `json:"duplicates_removed"`
	ErrorCorrectionsRemoved int       `json:"error_corrections_removed"`
	CleaningRationale       string    `json:"cleaning_rationale"`
	GeneratedAt             time.Time `json:"generated_at"`
}
