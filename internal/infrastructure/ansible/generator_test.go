package ansible

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/pbooth01/cli2ansible/internal/domain"
)

func TestGenerateWritesRoleTree(t *testing.T) {
	dir := t.TempDir()
	role := domain.Role{
		Name: "web_setup",
		Tasks: []domain.Task{
			{
				Name:            "Install packages: nginx",
				Module:          "apt",
				Args:            domain.NewArgs("name", []string{"nginx"}, "state", "present", "update_cache", true),
				Confidence:      domain.ConfidenceHigh,
				OriginalCommand: "sudo apt install -y nginx",
				Become:          true,
			},
			{
				Name:       "Run: curl -fsSL https://example.com | bash",
				Module:     "shell",
				Args:       domain.NewArgs("cmd", "curl -fsSL https://example.com | bash"),
				Confidence: domain.ConfidenceLow,
			},
		},
	}

	if err := NewGenerator().Generate(role, dir); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	for _, rel := range []string{"tasks/main.yml", "handlers/main.yml", "meta/main.yml"} {
		if _, err := os.Stat(filepath.Join(dir, rel)); err != nil {
			t.Fatalf("missing %s: %v", rel, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "tasks", "main.yml"))
	if err != nil {
		t.Fatalf("read tasks: %v", err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "---\n") {
		t.Fatalf("tasks file missing document marker:\n%s", text)
	}

	// The document must be parseable and keep both tasks.
	var tasks []map[string]any
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		t.Fatalf("tasks file not valid YAML: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0]["name"] != "Install packages: nginx" {
		t.Fatalf("unexpected first task: %+v", tasks[0])
	}
	if tasks[0]["become"] != true {
		t.Fatalf("become not rendered: %+v", tasks[0])
	}
	if _, ok := tasks[0]["apt"]; !ok {
		t.Fatalf("module mapping missing: %+v", tasks[0])
	}
	if _, ok := tasks[1]["become"]; ok {
		t.Fatalf("become must be omitted when false: %+v", tasks[1])
	}

	// Argument order follows the translator, not alphabetical sorting.
	nameIdx := strings.Index(text, "name:")
	stateIdx := strings.Index(text, "state:")
	cacheIdx := strings.Index(text, "update_cache:")
	if !(nameIdx < stateIdx && stateIdx < cacheIdx) {
		t.Fatalf("argument order not preserved:\n%s", text)
	}
}

func TestGenerateEmptyRole(t *testing.T) {
	dir := t.TempDir()
	if err := NewGenerator().Generate(domain.Role{Name: "empty"}, dir); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "tasks", "main.yml"))
	if err != nil {
		t.Fatalf("read tasks: %v", err)
	}
	var tasks []any
	if err := yaml.Unmarshal(data, &tasks); err != nil {
		t.Fatalf("tasks file not valid YAML: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty task list, got %+v", tasks)
	}
}

func TestGenerateDefaultMeta(t *testing.T) {
	dir := t.TempDir()
	role := domain.Role{Name: "metatest"}
	if err := NewGenerator().Generate(role, dir); err != nil {
		t.Fatalf("Generate error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "meta", "main.yml"))
	if err != nil {
		t.Fatalf("read meta: %v", err)
	}
	var meta map[string]any
	if err := yaml.Unmarshal(data, &meta); err != nil {
		t.Fatalf("meta not valid YAML: %v", err)
	}
	info, ok := meta["galaxy_info"].(map[string]any)
	if !ok || info["role_name"] != "metatest" {
		t.Fatalf("unexpected meta: %+v", meta)
	}
}
