// Package translator maps shell commands to structured automation tasks
// through an ordered chain of pattern-matching rules.
package translator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// Rule recognizes one command family. Rules are pure functions of the
// command, so translation is safe to run concurrently across commands.
type Rule func(command domain.Command) (domain.Task, bool)

// RulesEngine tries each rule in priority order; the first match wins.
// Unmatched commands degrade to a low-confidence shell passthrough rather
// than being dropped.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine builds the engine with the fixed rule priority: package
// install, service control, directory creation, file copy, VCS clone,
// language package managers, user creation, ownership, permissions.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{
		rules: []Rule{
			aptInstall,
			yumInstall,
			dnfInstall,
			systemctl,
			mkdir,
			copyFile,
			gitClone,
			pipInstall,
			npmInstall,
			useradd,
			chown,
			chmod,
		},
	}
}

// Translate implements ports.Translator. It reports false only for commands
// whose normalized text is empty.
func (e *RulesEngine) Translate(command domain.Command) (domain.Task, bool) {
	cmd := strings.TrimSpace(command.Normalized)
	if cmd == "" {
		return domain.Task{}, false
	}

	for _, rule := range e.rules {
		if task, ok := rule(command); ok {
			return task, true
		}
	}

	return domain.Task{
		Name:            fmt.Sprintf("Run: %s", truncate(cmd, 50)),
		Module:          "shell",
		Args:            domain.NewArgs("cmd", cmd),
		Confidence:      domain.ConfidenceLow,
		OriginalCommand: cmd,
		Become:          command.Sudo,
	}, true
}

var (
	aptPattern     = regexp.MustCompile(`^apt(?:-get)?\s+install\s+(?:-y\s+)?(.+)`)
	yumPattern     = regexp.MustCompile(`^yum\s+install\s+(?:-y\s+)?(.+)`)
	dnfPattern     = regexp.MustCompile(`^dnf\s+install\s+(?:-y\s+)?(.+)`)
	sysctlPattern  = regexp.MustCompile(`^systemctl\s+(start|stop|restart|enable|disable)\s+(\S+)`)
	mkdirPattern   = regexp.MustCompile(`^mkdir\s+(?:-p\s+)?(.+)`)
	cpPattern      = regexp.MustCompile(`^cp\s+(?:-r\s+)?(\S+)\s+(\S+)`)
	clonePattern   = regexp.MustCompile(`^git\s+clone\s+(\S+)(?:\s+(\S+))?`)
	pipPattern     = regexp.MustCompile(`^pip3?\s+install\s+(.+)`)
	npmPattern     = regexp.MustCompile(`^npm\s+install\s+(?:-g\s+)?(.+)`)
	userPattern    = regexp.MustCompile(`^useradd\s+(?:-m\s+)?(\S+)`)
	chownPattern   = regexp.MustCompile(`^chown\s+(?:-R\s+)?(\S+)\s+(.+)`)
	chmodPattern   = regexp.MustCompile(`^chmod\s+(?:-R\s+)?(\S+)\s+(.+)`)
	serviceStates  = map[string]string{"start": "started", "stop": "stopped", "restart": "restarted"}
)

func aptInstall(command domain.Command) (domain.Task, bool) {
	m := aptPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	packages := strings.Fields(m[1])
	return domain.Task{
		Name:            fmt.Sprintf("Install packages: %s", strings.Join(packages, ", ")),
		Module:          "apt",
		Args:            domain.NewArgs("name", packages, "state", "present", "update_cache", true),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

func yumInstall(command domain.Command) (domain.Task, bool) {
	m := yumPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	packages := strings.Fields(m[1])
	return domain.Task{
		Name:            fmt.Sprintf("Install packages: %s", strings.Join(packages, ", ")),
		Module:          "yum",
		Args:            domain.NewArgs("name", packages, "state", "present"),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

func dnfInstall(command domain.Command) (domain.Task, bool) {
	m := dnfPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	packages := strings.Fields(m[1])
	return domain.Task{
		Name:            fmt.Sprintf("Install packages: %s", strings.Join(packages, ", ")),
		Module:          "dnf",
		Args:            domain.NewArgs("name", packages, "state", "present"),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

func systemctl(command domain.Command) (domain.Task, bool) {
	m := sysctlPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	action, service := m[1], m[2]
	name := fmt.Sprintf("%s service: %s", capitalize(action), service)
	if state, ok := serviceStates[action]; ok {
		return domain.Task{
			Name:            name,
			Module:          "systemd",
			Args:            domain.NewArgs("name", service, "state", state),
			Confidence:      domain.ConfidenceHigh,
			OriginalCommand: command.Raw,
			Become:          command.Sudo,
		}, true
	}
	return domain.Task{
		Name:            name,
		Module:          "systemd",
		Args:            domain.NewArgs("name", service, "enabled", action == "enable"),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

func mkdir(command domain.Command) (domain.Task, bool) {
	m := mkdirPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	path := strings.TrimSpace(m[1])
	return domain.Task{
		Name:            fmt.Sprintf("Create directory: %s", path),
		Module:          "file",
		Args:            domain.NewArgs("path", path, "state", "directory"),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
		Creates:         path,
	}, true
}

// copyFile is deliberately medium confidence: plain cp has no idempotency
// guarantee without checksum or force flags.
func copyFile(command domain.Command) (domain.Task, bool) {
	m := cpPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	src, dest := m[1], m[2]
	return domain.Task{
		Name:            fmt.Sprintf("Copy %s to %s", src, dest),
		Module:          "copy",
		Args:            domain.NewArgs("src", src, "dest", dest),
		Confidence:      domain.ConfidenceMedium,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

// gitClone never propagates become: clones are treated as user-scoped even
// when the recorded command used sudo.
func gitClone(command domain.Command) (domain.Task, bool) {
	m := clonePattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	repo := m[1]
	dest := m[2]
	if dest == "" {
		parts := strings.Split(repo, "/")
		dest = strings.ReplaceAll(parts[len(parts)-1], ".git", "")
	}
	return domain.Task{
		Name:            fmt.Sprintf("Clone repository: %s", repo),
		Module:          "git",
		Args:            domain.NewArgs("repo", repo, "dest", dest),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Creates:         dest,
	}, true
}

func pipInstall(command domain.Command) (domain.Task, bool) {
	m := pipPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	packages := strings.Fields(m[1])
	return domain.Task{
		Name:            fmt.Sprintf("Install Python packages: %s", strings.Join(packages, ", ")),
		Module:          "pip",
		Args:            domain.NewArgs("name", packages, "state", "present"),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
	}, true
}

// npmInstall serializes the package list as one comma-joined string. That is
// inconsistent with apt/pip but downstream consumers depend on the shape.
func npmInstall(command domain.Command) (domain.Task, bool) {
	m := npmPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	packages := strings.Fields(m[1])
	global := strings.Contains(command.Normalized, "-g")
	return domain.Task{
		Name:            fmt.Sprintf("Install npm packages: %s", strings.Join(packages, ", ")),
		Module:          "npm",
		Args:            domain.NewArgs("name", strings.Join(packages, ", "), "global", global),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
	}, true
}

func useradd(command domain.Command) (domain.Task, bool) {
	m := userPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	username := m[1]
	return domain.Task{
		Name:            fmt.Sprintf("Create user: %s", username),
		Module:          "user",
		Args:            domain.NewArgs("name", username, "state", "present", "create_home", true),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

func chown(command domain.Command) (domain.Task, bool) {
	m := chownPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	owner, path := m[1], m[2]
	args := domain.NewArgs("path", path)
	if user, group, found := strings.Cut(owner, ":"); found {
		args.Set("owner", user)
		args.Set("group", group)
	} else {
		args.Set("owner", owner)
	}
	return domain.Task{
		Name:            fmt.Sprintf("Change ownership of %s", path),
		Module:          "file",
		Args:            args,
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

func chmod(command domain.Command) (domain.Task, bool) {
	m := chmodPattern.FindStringSubmatch(command.Normalized)
	if m == nil {
		return domain.Task{}, false
	}
	mode, path := m[1], m[2]
	return domain.Task{
		Name:            fmt.Sprintf("Change permissions of %s", path),
		Module:          "file",
		Args:            domain.NewArgs("path", path, "mode", mode),
		Confidence:      domain.ConfidenceHigh,
		OriginalCommand: command.Raw,
		Become:          command.Sudo,
	}, true
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var _ ports.Translator = (*RulesEngine)(nil)
