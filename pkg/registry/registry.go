// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"listings-workers/internal/common/validation"
)

var (
	ErrActivityExists   = errors.New("activity already exists")
	ErrActivityNotFound = errors.New("activity not found")
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	return &reg, nil
}

// LoadOrCreate loads path, or returns an empty registry when it does not exist.
func LoadOrCreate(path string) (*ActivityRegistry, error) {
	reg, err := LoadRegistry(path)
	if os.IsNotExist(err) {
		return &ActivityRegistry{
			Version:     "1.0.0",
			LastUpdated: time.Now().UTC().Format(time.RFC3339),
			Activities:  []Activity{},
		}, nil
	}
	return reg, err
}

// Save writes the registry as indented JSON, creating the directory if needed.
func (r *ActivityRegistry) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write registry file: %w", err)
	}
	return nil
}

// Find returns the activity serving taskType.
func (r *ActivityRegistry) Find(taskType string) (*Activity, bool) {
	for i := range r.Activities {
		if r.Activities[i].TaskType == taskType {
			return &r.Activities[i], true
		}
	}
	return nil, false
}

// TaskTypes lists task types in registry order.
func (r *ActivityRegistry) TaskTypes() []string {
	out := make([]string, 0, len(r.Activities))
	for _, a := range r.Activities {
		out = append(out, a.TaskType)
	}
	return out
}

func (r *ActivityRegistry) Add(a Activity) error {
	for _, existing := range r.Activities {
		if existing.ID == a.ID {
			return fmt.Errorf("%w: %s", ErrActivityExists, a.ID)
		}
	}
	r.Activities = append(r.Activities, a)
	r.touch()
	return nil
}

// Update sets one named field of activity id from its string form.
func (r *ActivityRegistry) Update(id, field, value string) error {
	var a *Activity
	for i := range r.Activities {
		if r.Activities[i].ID == id {
			a = &r.Activities[i]
			break
		}
	}
	if a == nil {
		return fmt.Errorf("%w: %s", ErrActivityNotFound, id)
	}

	switch field {
	case "status":
		if !validStatuses[value] {
			return fmt.Errorf("invalid status %q", value)
		}
		a.ImplementationStatus = value
	case "version":
		a.Version = value
	case "displayName":
		a.DisplayName = value
	case "description":
		a.Description = value
	case "category":
		a.Category = value
	case "taskType":
		a.TaskType = value
	case "timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid timeout value: %w", err)
		}
		a.Timeout = value
	case "retries":
		retries, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	r.touch()
	return nil
}

func (r *ActivityRegistry) touch() {
	r.LastUpdated = time.Now().UTC().Format(time.RFC3339)
}

// Validate checks required fields, uniqueness and that every input schema compiles.
func (r *ActivityRegistry) Validate() error {
	if len(r.Activities) == 0 {
		return errors.New("registry contains no activities")
	}

	ids := make(map[string]bool)
	taskTypes := make(map[string]bool)
	for _, a := range r.Activities {
		if a.ID == "" {
			return errors.New("activity missing required field: ID")
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity ID: %s", a.ID)
		}
		ids[a.ID] = true

		if a.DisplayName == "" {
			return fmt.Errorf("activity %s missing required field: DisplayName", a.ID)
		}
		if a.TaskType == "" {
			return fmt.Errorf("activity %s missing required field: TaskType", a.ID)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type: %s", a.TaskType)
		}
		taskTypes[a.TaskType] = true

		if a.Category == "" {
			return fmt.Errorf("activity %s missing required field: Category", a.ID)
		}
		if a.ImplementationStatus != "" && !validStatuses[a.ImplementationStatus] {
			return fmt.Errorf("activity %s has invalid status %q", a.ID, a.ImplementationStatus)
		}
		if a.Timeout != "" {
			if _, err := time.ParseDuration(a.Timeout); err != nil {
				return fmt.Errorf("activity %s has invalid timeout %q", a.ID, a.Timeout)
			}
		}
		if len(a.InputSchema) > 0 {
			if _, err := a.compileInputSchema(); err != nil {
				return fmt.Errorf("activity %s: %w", a.ID, err)
			}
		}
	}
	return nil
}

func (a *Activity) compileInputSchema() (*validation.Schema, error) {
	raw, err := json.Marshal(a.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("encode input schema: %w", err)
	}
	return validation.Compile(string(raw))
}

// ValidateInput checks job variables against the activity's input schema.
// An activity without a schema accepts anything.
func (a *Activity) ValidateInput(variables map[string]interface{}) (*validation.ValidationResult, error) {
	if len(a.InputSchema) == 0 {
		return &validation.ValidationResult{Valid: true}, nil
	}
	schema, err := a.compileInputSchema()
	if err != nil {
		return nil, err
	}
	return schema.Validate(variables)
}
