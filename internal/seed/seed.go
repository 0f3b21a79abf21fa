// Package seed loads reference data (role assignments, residents and
// checklist templates) from YAML. Local runs use the embedded demo set.
package seed

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"carecompliance/internal/access"
	checklistmodels "carecompliance/internal/checklist/models"
	"carecompliance/internal/subjects"
	"carecompliance/pkg/email"
	strs "carecompliance/pkg/platform/strings"
)

//go:embed demo.yaml
var demoData []byte

type File struct {
	Roles     []Role     `yaml:"roles"`
	Subjects  []Subject  `yaml:"subjects"`
	Templates []Template `yaml:"templates"`
}

type Role struct {
	SubjectID string   `yaml:"subject_id"`
	Role      string   `yaml:"role"`
	Locations []string `yaml:"locations"`
	Email     string   `yaml:"email"`
}

type Subject struct {
	ID       string `yaml:"id"`
	Location string `yaml:"location"`
}

type Template struct {
	ID    string         `yaml:"id"`
	Name  string         `yaml:"name"`
	Items []TemplateItem `yaml:"items"`
}

type TemplateItem struct {
	ID     string `yaml:"id"`
	Prompt string `yaml:"prompt"`
}

type RoleWriter interface {
	Put(ctx context.Context, role *access.Role) error
}

type SubjectWriter interface {
	Put(ctx context.Context, subject subjects.Subject) error
}

type TemplateWriter interface {
	Put(ctx context.Context, t *checklistmodels.Template) error
}

// Demo returns the embedded demo data set.
func Demo() (*File, error) {
	return Parse(demoData)
}

// LoadFile reads a seed file from disk.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("seed: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("seed: parse: %w", err)
	}
	return &f, nil
}

// Apply validates every entry and writes it. Writes are upserts, so applying
// the same file twice is harmless.
func Apply(ctx context.Context, f *File, roles RoleWriter, subjectStore SubjectWriter, templates TemplateWriter) error {
	for _, r := range f.Roles {
		role, err := r.toRole()
		if err != nil {
			return fmt.Errorf("seed: role %q: %w", r.SubjectID, err)
		}
		if err := roles.Put(ctx, role); err != nil {
			return fmt.Errorf("seed: put role %q: %w", r.SubjectID, err)
		}
	}
	for _, s := range f.Subjects {
		id, location := strings.TrimSpace(s.ID), strings.TrimSpace(s.Location)
		if id == "" || location == "" {
			return fmt.Errorf("seed: subject needs id and location")
		}
		if err := subjectStore.Put(ctx, subjects.Subject{ID: id, Location: location}); err != nil {
			return fmt.Errorf("seed: put subject %q: %w", id, err)
		}
	}
	for _, t := range f.Templates {
		tpl, err := t.toTemplate()
		if err != nil {
			return fmt.Errorf("seed: template %q: %w", t.ID, err)
		}
		if err := templates.Put(ctx, tpl); err != nil {
			return fmt.Errorf("seed: put template %q: %w", t.ID, err)
		}
	}
	return nil
}

func (r Role) toRole() (*access.Role, error) {
	id := strings.TrimSpace(r.SubjectID)
	if id == "" {
		return nil, fmt.Errorf("subject_id is required")
	}
	name, err := access.ParseRoleName(r.Role)
	if err != nil {
		return nil, err
	}
	addr := ""
	if strings.TrimSpace(r.Email) != "" {
		if addr, err = email.Normalize(r.Email); err != nil {
			return nil, err
		}
	}
	return &access.Role{SubjectID: id, Role: name, Locations: strs.Compact(r.Locations), Email: addr}, nil
}

func (t Template) toTemplate() (*checklistmodels.Template, error) {
	if strings.TrimSpace(t.ID) == "" || strings.TrimSpace(t.Name) == "" {
		return nil, fmt.Errorf("id and name are required")
	}
	if len(t.Items) == 0 {
		return nil, fmt.Errorf("at least one item is required")
	}
	tpl := &checklistmodels.Template{ID: strings.TrimSpace(t.ID), Name: strings.TrimSpace(t.Name)}
	seen := make(map[string]bool, len(t.Items))
	for _, it := range t.Items {
		if it.ID == "" || seen[it.ID] {
			return nil, fmt.Errorf("item ids must be unique and non-empty")
		}
		seen[it.ID] = true
		tpl.Items = append(tpl.Items, checklistmodels.TemplateItem{ID: it.ID, Prompt: it.Prompt})
	}
	return tpl, nil
}
