// Package compile turns a session's extracted commands into an Ansible role
// and a translation report, and packages the role as a downloadable artifact.
package compile

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// Service compiles sessions. All collaborators are injected; the service
// holds no global state.
type Service struct {
	Repo       ports.SessionRepository
	Translator ports.Translator
	Generator  ports.RoleGenerator
	Store      ports.ObjectStore
	Logger     ports.Logger
}

// Compile translates every command of the session and assembles the role and
// its report. The session moves through compiling to completed.
func (s *Service) Compile(ctx context.Context, sessionID uuid.UUID) (domain.Role, domain.Report, error) {
	session, err := s.Repo.GetSession(ctx, sessionID)
	if err != nil {
		return domain.Role{}, domain.Report{}, err
	}

	session.Status = domain.StatusCompiling
	if session, err = s.Repo.UpdateSession(ctx, session); err != nil {
		return domain.Role{}, domain.Report{}, err
	}

	commands, err := s.Repo.ListCommands(ctx, sessionID)
	if err != nil {
		return domain.Role{}, domain.Report{}, err
	}

	tasks := make([]domain.Task, 0, len(commands))
	var skipped []string
	for _, command := range commands {
		task, ok := s.Translator.Translate(command)
		if !ok {
			skipped = append(skipped, command.Raw)
			continue
		}
		tasks = append(tasks, task)
	}

	report := BuildReport(sessionID, commands, tasks, skipped)

	name := session.Name
	if name == "" {
		name = fmt.Sprintf("role_%s", sessionID)
	}
	role := domain.Role{Name: name, Tasks: tasks}

	session.Status = domain.StatusCompleted
	if _, err = s.Repo.UpdateSession(ctx, session); err != nil {
		return domain.Role{}, domain.Report{}, err
	}

	if s.Logger != nil {
		s.Logger.Info("session compiled", map[string]interface{}{
			"session_id": sessionID.String(),
			"tasks":      len(tasks),
			"skipped":    len(skipped),
		})
	}
	return role, report, nil
}

// ExportArtifact generates the role on disk, zips it and uploads the archive
// under the session's artifact key. It returns the artifact key.
func (s *Service) ExportArtifact(ctx context.Context, role domain.Role, sessionID uuid.UUID) (string, error) {
	tmpDir, err := os.MkdirTemp("", "cli2ansible-role-*")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	roleDir := filepath.Join(tmpDir, role.Name)
	if err := os.MkdirAll(roleDir, 0o755); err != nil {
		return "", err
	}
	if err := s.Generator.Generate(role, roleDir); err != nil {
		return "", fmt.Errorf("generate role: %w", err)
	}

	archive, err := zipDirectory(tmpDir, role.Name)
	if err != nil {
		return "", fmt.Errorf("package role: %w", err)
	}

	key := ArtifactKey(sessionID)
	if _, err := s.Store.Upload(ctx, key, archive, "application/zip"); err != nil {
		return "", err
	}
	return key, nil
}

// PresignArtifact returns a time-limited retrieval URL for the session's
// artifact.
func (s *Service) PresignArtifact(ctx context.Context, sessionID uuid.UUID, ttl time.Duration) (string, error) {
	return s.Store.PresignURL(ctx, ArtifactKey(sessionID), ttl)
}

// ArtifactKey is the object-store key of a session's compiled role archive.
func ArtifactKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("sessions/%s/role.zip", sessionID)
}

// zipDirectory archives root/<name> recursively, storing entries relative to
// root so the archive unpacks to <name>/...
func zipDirectory(root, name string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)

	base := filepath.Join(root, name)
	err := filepath.WalkDir(base, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		f, err := w.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		_, err = f.Write(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
