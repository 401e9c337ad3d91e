package httpapi

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/pbooth01/cli2ansible/internal/application/clean"
	"github.com/pbooth01/cli2ansible/internal/application/compile"
	"github.com/pbooth01/cli2ansible/internal/application/ingest"
	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

type handler struct {
	ingest  *ingest.Service
	compile *compile.Service
	clean   *clean.Service
	log     ports.Logger
}

func (h *handler) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": "cli2ansible"})
}

type sessionCreateRequest struct {
	Name     string         `json:"name"`
	Metadata map[string]any `json:"metadata"`
}

func (h *handler) createSession(c *fiber.Ctx) error {
	var req sessionCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	session, err := h.ingest.CreateSession(c.Context(), req.Name, req.Metadata)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *handler) getSession(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	session, err := h.ingest.Repo.GetSession(c.Context(), sessionID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(session)
}

type eventCreateRequest struct {
	Timestamp float64          `json:"timestamp"`
	Kind      domain.EventKind `json:"event_type"`
	Data      string           `json:"data"`
	Sequence  int              `json:"sequence"`
}

func (h *handler) uploadEvents(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	var reqs []eventCreateRequest
	if err := c.BodyParser(&reqs); err != nil {
		return badRequest(c, "invalid request body")
	}
	events := make([]domain.Event, 0, len(reqs))
	for _, r := range reqs {
		events = append(events, domain.Event{
			Timestamp: r.Timestamp,
			Kind:      r.Kind,
			Data:      r.Data,
			Sequence:  r.Sequence,
		})
	}
	if err := h.ingest.SaveEvents(c.Context(), sessionID, events); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "uploaded", "count": len(events)})
}

func (h *handler) listEvents(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	if _, err := h.ingest.Repo.GetSession(c.Context(), sessionID); err != nil {
		return h.fail(c, err)
	}
	events, err := h.ingest.Repo.ListEvents(c.Context(), sessionID)
	if err != nil {
		return h.fail(c, err)
	}
	if events == nil {
		events = []domain.Event{}
	}
	return c.JSON(fiber.Map{
		"session_id":  sessionID,
		"event_count": len(events),
		"events":      events,
	})
}

func (h *handler) uploadCast(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "missing file upload")
	}
	if !strings.HasSuffix(fileHeader.Filename, ".cast") {
		return badRequest(c, "File must have .cast extension")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return h.fail(c, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return h.fail(c, err)
	}

	limit := h.ingest.MaxUploadBytes
	if limit <= 0 {
		limit = ingest.DefaultMaxUploadBytes
	}
	if int64(len(data)) > limit {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("File size (%d bytes) exceeds maximum (%d bytes)", len(data), limit),
		})
	}

	events, err := h.ingest.UploadCast(c.Context(), sessionID, data, fileHeader.Filename)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return notFound(c, "Session not found")
		}
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{
		"status":        "parsed",
		"cast_file_key": ingest.RecordingKey(sessionID),
		"event_count":   len(events),
		"events":        events,
	})
}

type eventPatchRequest struct {
	Timestamp *float64          `json:"timestamp"`
	Kind      *domain.EventKind `json:"event_type"`
	Data      *string           `json:"data"`
	Version   int               `json:"version"`
}

func (h *handler) updateEvent(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	eventID, err := uuid.Parse(c.Params("eventID"))
	if err != nil {
		return badRequest(c, "invalid event id")
	}
	var req eventPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	event, err := h.ingest.UpdateEvent(c.Context(), sessionID, eventID, ingest.EventPatch{
		Timestamp: req.Timestamp,
		Kind:      req.Kind,
		Data:      req.Data,
	}, req.Version)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(event)
}

type batchUpdateRequest struct {
	Updates []struct {
		ID        uuid.UUID         `json:"id"`
		Version   int               `json:"version"`
		Timestamp *float64          `json:"timestamp"`
		Kind      *domain.EventKind `json:"event_type"`
		Data      *string           `json:"data"`
	} `json:"updates"`
}

func (h *handler) updateEventsBatch(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	if _, err := h.ingest.Repo.GetSession(c.Context(), sessionID); err != nil {
		return h.fail(c, err)
	}
	var req batchUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	updates := make([]ingest.BatchUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		updates = append(updates, ingest.BatchUpdate{
			ID:      u.ID,
			Version: u.Version,
			Patch: ingest.EventPatch{
				Timestamp: u.Timestamp,
				Kind:      u.Kind,
				Data:      u.Data,
			},
		})
	}

	results := h.ingest.UpdateEventsBatch(c.Context(), sessionID, updates)
	var updated, failed int
	formatted := make([]fiber.Map, 0, len(results))
	for _, r := range results {
		if r.Err != "" {
			failed++
			formatted = append(formatted, fiber.Map{"id": r.ID, "status": "error", "error": r.Err})
			continue
		}
		updated++
		formatted = append(formatted, fiber.Map{"id": r.ID, "status": "success", "event": r.Event})
	}
	return c.JSON(fiber.Map{"updated": updated, "failed": failed, "results": formatted})
}

func (h *handler) compileSession(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}

	if _, err := h.ingest.ExtractCommands(c.Context(), sessionID); err != nil {
		return h.fail(c, err)
	}
	role, _, err := h.compile.Compile(c.Context(), sessionID)
	if err != nil {
		return h.fail(c, err)
	}
	artifactKey, err := h.compile.ExportArtifact(c.Context(), role, sessionID)
	if err != nil {
		return h.fail(c, err)
	}
	downloadURL, err := h.compile.PresignArtifact(c.Context(), sessionID, time.Hour)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{
		"artifact_url": artifactKey,
		"download_url": downloadURL,
	})
}

func (h *handler) getReport(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	if _, err := h.ingest.Repo.GetSession(c.Context(), sessionID); err != nil {
		return h.fail(c, err)
	}
	_, report, err := h.compile.Compile(c.Context(), sessionID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

func (h *handler) downloadPlaybook(c *fiber.Ctx) error {
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	data, err := h.compile.Store.Download(c.Context(), compile.ArtifactKey(sessionID))
	if err != nil {
		return notFound(c, "Artifact not found")
	}
	c.Set(fiber.HeaderContentType, "application/zip")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=role_%s.zip`, sessionID))
	return c.Send(data)
}

func (h *handler) cleanSession(c *fiber.Ctx) error {
	if h.clean == nil || h.clean.Cleaner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Clean service not available. Configure a cleaner provider.",
		})
	}
	sessionID, err := sessionParam(c)
	if err != nil {
		return badRequest(c, "invalid session id")
	}
	if _, err := h.ingest.ExtractCommands(c.Context(), sessionID); err != nil {
		return h.fail(c, err)
	}
	cleaned, report, err := h.clean.CleanCommands(c.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return notFound(c, "Session not found")
		}
		return badRequest(c, err.Error())
	}
	return c.JSON(fiber.Map{
		"cleaned_commands": cleaned,
		"report":           report,
	})
}

// fail maps domain errors onto HTTP statuses: not-found to 404, version
// conflicts to 409, everything else to 500.
func (h *handler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return notFound(c, "Session not found")
	case errors.Is(err, domain.ErrEventNotFound):
		return notFound(c, "Event not found")
	case errors.Is(err, domain.ErrVersionConflict):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		if h.log != nil {
			h.log.Error("request failed", err, map[string]interface{}{
				"path": c.Path(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}

func sessionParam(c *fiber.Ctx) (uuid.UUID, error) {
	return uuid.Parse(c.Params("id"))
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func notFound(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": msg})
}
