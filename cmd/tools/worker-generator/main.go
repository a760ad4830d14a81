// cmd/tools/worker-generator/main.go
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"
	"unicode"

	"listings-workers/pkg/registry"
)

const modulePath = "listings-workers"

// WorkerData holds data for templates
type WorkerData struct {
	Module          string
	Dir             string
	PackageName     string
	TaskType        string
	TimeoutExpr     string
	Errors          []ErrorDef
	InputFields     []Field
	OutputFields    []Field
	InputSchemaJSON string
}

type ErrorDef struct {
	Name string
	Code string
}

type Field struct {
	Name string
	Type string
	JSON string
}

var templates = map[string]string{
	"handler.go":      handlerTemplate,
	"config.go":       configTemplate,
	"models.go":       modelsTemplate,
	"handler_test.go": testTemplate,
}

func main() {
	activity := flag.String("activity", "", "Activity ID from registry (e.g., rank-listings)")
	outputDir := flag.String("output", "./internal/workers/", "Output directory for the generated worker")
	registryPath := flag.String("registry", "configs/activity-registry.json", "Path to the activity registry JSON file")
	force := flag.Bool("force", false, "Overwrite existing files")
	flag.Parse()

	if *activity == "" {
		fmt.Println("Usage: worker-generator --activity <id> [--output <dir>] [--registry <path>]")
		os.Exit(1)
	}

	reg, err := registry.LoadRegistry(*registryPath)
	if err != nil {
		fmt.Printf("Error loading registry from %s: %v\n", *registryPath, err)
		os.Exit(1)
	}

	var found *registry.Activity
	for i := range reg.Activities {
		if reg.Activities[i].ID == *activity {
			found = &reg.Activities[i]
			break
		}
	}
	if found == nil {
		fmt.Printf("Activity '%s' not found in registry %s\n", *activity, *registryPath)
		os.Exit(1)
	}

	workerDir := filepath.Join(*outputDir, categoryDir(found.Category), found.ID)
	files, err := generate(found, filepath.ToSlash(workerDir))
	if err != nil {
		fmt.Printf("Error generating worker: %v\n", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(workerDir, 0755); err != nil {
		fmt.Printf("Error creating directory: %v\n", err)
		os.Exit(1)
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(workerDir, name)
		if _, err := os.Stat(path); err == nil && !*force {
			fmt.Printf("- Skipped %s (exists)\n", path)
			continue
		}
		if err := os.WriteFile(path, files[name], 0644); err != nil {
			fmt.Printf("Error writing %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("✓ Generated %s\n", path)
	}

	fmt.Printf("\nWorker scaffold generated at: %s\n", workerDir)
	fmt.Printf("\nNext steps:\n")
	fmt.Printf("  1. Implement execute in handler.go\n")
	fmt.Printf("  2. Register the worker in cmd/worker-manager/main.go\n")
	fmt.Printf("  3. Add a workers entry to configs/config.yaml\n")
}

// generate renders the gofmt'ed scaffold files for a.
func generate(a *registry.Activity, dir string) (map[string][]byte, error) {
	schema := a.InputSchema
	if len(schema) == 0 {
		schema = map[string]interface{}{"type": "object"}
	}
	schemaJSON, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal input schema: %w", err)
	}

	data := WorkerData{
		Module:          modulePath,
		Dir:             strings.TrimPrefix(dir, "./"),
		PackageName:     packageName(a.ID),
		TaskType:        a.TaskType,
		TimeoutExpr:     timeoutExpr(a.Timeout),
		Errors:          errorDefs(a.ErrorCodes),
		InputFields:     structFields(a.InputSchema),
		OutputFields:    structFields(a.OutputSchema),
		InputSchemaJSON: string(schemaJSON),
	}

	files := make(map[string][]byte, len(templates))
	for name, text := range templates {
		tmpl, err := template.New(name).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("execute template %s: %w", name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		files[name] = src
	}
	return files, nil
}

func packageName(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}

// timeoutExpr renders a registry timeout ("10s") as a Go duration expression.
func timeoutExpr(s string) string {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		d = 10 * time.Second
	}
	if d%time.Second == 0 {
		return fmt.Sprintf("%d * time.Second", d/time.Second)
	}
	return fmt.Sprintf("%d * time.Millisecond", d/time.Millisecond)
}

// errorDefs turns BPMN error codes into sentinel names. PARSE_ERROR is thrown
// inline by every handler and gets no sentinel.
func errorDefs(codes []string) []ErrorDef {
	var defs []ErrorDef
	seen := map[string]bool{}
	for _, code := range codes {
		if code == "PARSE_ERROR" || code == "" || seen[code] {
			continue
		}
		seen[code] = true
		defs = append(defs, ErrorDef{Name: "Err" + camel(strings.ToLower(code), '_'), Code: code})
	}
	if len(defs) == 0 {
		defs = append(defs, ErrorDef{Name: "ErrExecutionFailed", Code: "EXECUTION_FAILED"})
	}
	return defs
}

func structFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]Field, 0, len(names))
	for _, name := range names {
		details, _ := props[name].(map[string]interface{})
		fields = append(fields, Field{
			Name: camel(name, '_'),
			Type: goType(details["type"]),
			JSON: name,
		})
	}
	return fields
}

// goType maps a JSON schema type to a Go type. Union types collapse to
// interface{} unless they are a single type plus null.
func goType(jsonType interface{}) string {
	switch t := jsonType.(type) {
	case string:
		switch t {
		case "string":
			return "string"
		case "integer":
			return "int64"
		case "number":
			return "float64"
		case "boolean":
			return "bool"
		case "object":
			return "map[string]interface{}"
		case "array":
			return "[]interface{}"
		}
	case []interface{}:
		var nonNull []interface{}
		for _, v := range t {
			if v != "null" {
				nonNull = append(nonNull, v)
			}
		}
		if len(nonNull) == 1 {
			return goType(nonNull[0])
		}
	}
	return "interface{}"
}

// camel upper-cases the first letter of every sep-separated part.
func camel(s string, sep rune) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == sep || r == '-' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// categoryDir maps registry categories to the workers directory layout.
func categoryDir(category string) string {
	switch category {
	case "listings", "search":
		return "listings"
	case "data-access":
		return "data-access"
	case "analytics", "audit":
		return "analytics"
	default:
		return strings.ToLower(category)
	}
}
