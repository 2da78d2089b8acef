package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/open-edge-platform/geti-sub021/internal/annotation"
)

// ErrInvalidProject is wrapped by every validation failure of a project.
var ErrInvalidProject = errors.New("invalid project")

// Project is a named task chain.
type Project struct {
	Name  string     `yaml:"name"`
	Tasks []TaskSpec `yaml:"tasks"`
}

type TaskSpec struct {
	ID     string      `yaml:"id"`
	Title  string      `yaml:"title"`
	Domain string      `yaml:"domain"`
	Labels []LabelSpec `yaml:"labels"`
}

type LabelSpec struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Color     string   `yaml:"color"`
	Hotkey    string   `yaml:"hotkey"`
	Group     string   `yaml:"group"`
	Parent    string   `yaml:"parent"`
	Behaviour []string `yaml:"behaviour"`
	Empty     bool     `yaml:"empty"`
	Deleted   bool     `yaml:"deleted"`
}

var behaviourNames = map[string]annotation.Behaviour{
	"local":      annotation.Local,
	"global":     annotation.Global,
	"exclusive":  annotation.Exclusive,
	"anomalous":  annotation.Anomalous,
	"background": annotation.Background,
}

// LoadProject reads and validates the project file at path.
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}
	return ParseProject(data)
}

// ParseProject decodes and validates a YAML project document.
func ParseProject(data []byte) (*Project, error) {
	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that the project describes a usable chain: at least one
// task, known domains, ids unique across the project, known behaviours,
// parseable colours and parents that exist.
func (p *Project) Validate() error {
	if len(p.Tasks) == 0 {
		return fmt.Errorf("%w: no tasks defined", ErrInvalidProject)
	}

	taskIDs := make(map[string]bool)
	labelIDs := make(map[string]bool)

	for i, t := range p.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task %d has no id", ErrInvalidProject, i)
		}
		if taskIDs[t.ID] {
			return fmt.Errorf("%w: duplicate task id '%s'", ErrInvalidProject, t.ID)
		}
		taskIDs[t.ID] = true

		if !annotation.Domain(t.Domain).IsValid() {
			return fmt.Errorf("%w: task '%s' has unknown domain '%s'", ErrInvalidProject, t.ID, t.Domain)
		}

		for _, l := range t.Labels {
			if l.ID == "" {
				return fmt.Errorf("%w: task '%s' has a label without id", ErrInvalidProject, t.ID)
			}
			if labelIDs[l.ID] {
				return fmt.Errorf("%w: duplicate label id '%s'", ErrInvalidProject, l.ID)
			}
			labelIDs[l.ID] = true

			for _, name := range l.Behaviour {
				if _, ok := behaviourNames[strings.ToLower(name)]; !ok {
					return fmt.Errorf("%w: label '%s' has unknown behaviour '%s'", ErrInvalidProject, l.ID, name)
				}
			}
			if l.Color != "" {
				if _, err := annotation.NormalizeColor(l.Color); err != nil {
					return fmt.Errorf("%w: label '%s': %v", ErrInvalidProject, l.ID, err)
				}
			}
		}
	}

	for _, t := range p.Tasks {
		for _, l := range t.Labels {
			if l.Parent != "" && !labelIDs[l.Parent] {
				return fmt.Errorf("%w: label '%s' has unknown parent '%s'", ErrInvalidProject, l.ID, l.Parent)
			}
		}
	}

	return nil
}

// AnnotationTasks converts the project into the task chain, filling in
// defaults for names, groups, behaviours and colours. The project must be
// valid.
func (p *Project) AnnotationTasks() []annotation.Task {
	tasks := make([]annotation.Task, 0, len(p.Tasks))
	index := 0

	for _, t := range p.Tasks {
		domain := annotation.Domain(t.Domain)
		task := annotation.Task{
			ID:     t.ID,
			Title:  t.Title,
			Domain: domain,
			Labels: make([]annotation.Label, 0, len(t.Labels)),
		}
		if task.Title == "" {
			task.Title = t.ID
		}

		for _, l := range t.Labels {
			task.Labels = append(task.Labels, l.label(task, index))
			index++
		}
		tasks = append(tasks, task)
	}

	return tasks
}

func (l LabelSpec) label(task annotation.Task, index int) annotation.Label {
	out := annotation.Label{
		ID:        l.ID,
		Name:      l.Name,
		Hotkey:    l.Hotkey,
		Group:     l.Group,
		IsEmpty:   l.Empty,
		IsDeleted: l.Deleted,
	}
	if out.Name == "" {
		out.Name = l.ID
	}
	if out.Group == "" {
		out.Group = task.Title + " labels"
		if l.Empty {
			out.Group = out.Name
		}
	}
	if l.Parent != "" {
		parent := l.Parent
		out.ParentLabelID = &parent
	}

	for _, name := range l.Behaviour {
		out.Behaviour |= behaviourNames[strings.ToLower(name)]
	}
	if out.Behaviour == 0 {
		out.Behaviour = defaultBehaviour(task.Domain)
	}

	out.Color = annotation.DefaultColor(index)
	if l.Color != "" {
		if c, err := annotation.NormalizeColor(l.Color); err == nil {
			out.Color = c
		}
	}
	return out
}

func defaultBehaviour(domain annotation.Domain) annotation.Behaviour {
	if domain.IsClassification() || domain.IsAnomaly() {
		return annotation.Global
	}
	return annotation.Local
}
