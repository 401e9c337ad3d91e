// Package ansible renders roles as standard Ansible role directory trees.
package ansible

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/pbooth01/cli2ansible/internal/domain"
	"github.com/pbooth01/cli2ansible/internal/ports"
)

// yamlIndent matches the two-space indentation ansible-lint expects.
const yamlIndent = 2

// Generator writes a role to disk: tasks/main.yml, handlers/main.yml and
// meta/main.yml, with task keys and arguments in the order the translator
// produced them.
type Generator struct{}

// NewGenerator returns a role generator.
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the role tree under outputDir, which must already exist.
func (g *Generator) Generate(role domain.Role, outputDir string) error {
	tasks, err := taskListNode(role.Tasks)
	if err != nil {
		return err
	}
	if err := writeYAML(filepath.Join(outputDir, "tasks", "main.yml"), tasks); err != nil {
		return err
	}

	handlers, err := taskListNode(role.Handlers)
	if err != nil {
		return err
	}
	if err := writeYAML(filepath.Join(outputDir, "handlers", "main.yml"), handlers); err != nil {
		return err
	}

	meta := role.Meta
	if meta == nil {
		meta = map[string]any{
			"galaxy_info": map[string]any{
				"role_name":   role.Name,
				"description": "Role generated from terminal session recording",
				"license":     "MIT",
			},
			"dependencies": []any{},
		}
	}
	if err := writeYAML(filepath.Join(outputDir, "meta", "main.yml"), meta); err != nil {
		return err
	}

	if len(role.Defaults) > 0 {
		if err := writeYAML(filepath.Join(outputDir, "defaults", "main.yml"), role.Defaults); err != nil {
			return err
		}
	}
	if len(role.Vars) > 0 {
		if err := writeYAML(filepath.Join(outputDir, "vars", "main.yml"), role.Vars); err != nil {
			return err
		}
	}
	return nil
}

// taskListNode renders tasks as a YAML sequence preserving key order: name
// first, then the module mapping, then the execution modifiers.
func taskListNode(tasks []domain.Task) (*yaml.Node, error) {
	list := &yaml.Node{Kind: yaml.SequenceNode}
	for _, task := range tasks {
		node, err := taskNode(task)
		if err != nil {
			return nil, err
		}
		list.Content = append(list.Content, node)
	}
	return list, nil
}

func taskNode(task domain.Task) (*yaml.Node, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}

	if err := appendPair(node, "name", task.Name); err != nil {
		return nil, err
	}

	args, err := task.Args.MarshalYAML()
	if err != nil {
		return nil, err
	}
	argsNode, ok := args.(*yaml.Node)
	if !ok {
		return nil, fmt.Errorf("task %q: unexpected args encoding", task.Name)
	}
	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: task.Module}
	node.Content = append(node.Content, keyNode, argsNode)

	if task.ChangedWhen != "" {
		if err := appendPair(node, "changed_when", task.ChangedWhen); err != nil {
			return nil, err
		}
	}
	if task.Creates != "" {
		// args.creates already idempotence-guards shell/command tasks; the
		// top-level key is only written when a rule sets it explicitly.
		if _, inArgs := task.Args.Get("creates"); !inArgs {
			if err := appendPair(node, "args", map[string]string{"creates": task.Creates}); err != nil {
				return nil, err
			}
		}
	}
	if task.Become {
		if err := appendPair(node, "become", true); err != nil {
			return nil, err
		}
	}
	if len(task.Tags) > 0 {
		if err := appendPair(node, "tags", task.Tags); err != nil {
			return nil, err
		}
	}
	return node, nil
}

func appendPair(node *yaml.Node, key string, value any) error {
	keyNode := &yaml.Node{}
	if err := keyNode.Encode(key); err != nil {
		return err
	}
	valNode := &yaml.Node{}
	if err := valNode.Encode(value); err != nil {
		return err
	}
	node.Content = append(node.Content, keyNode, valNode)
	return nil
}

// writeYAML creates the parent directory and writes doc with a leading
// document marker.
func writeYAML(path string, doc any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteString("---\n"); err != nil {
		return err
	}
	enc := yaml.NewEncoder(f)
	enc.SetIndent(yamlIndent)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

var _ ports.RoleGenerator = (*Generator)(nil)
