// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"listings-workers/pkg/registry"
)

const defaultRegistryPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help(os.Stdout)
		os.Exit(1)
	}

	if err := run(os.Args[1], os.Args[2:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(command string, args []string, out io.Writer) error {
	switch command {
	case "add":
		return runAdd(args, out)
	case "update":
		return runUpdate(args, out)
	case "validate":
		return runValidate(args, out)
	case "list":
		return runList(args, out)
	case "help":
		help(out)
		return nil
	default:
		help(out)
		return fmt.Errorf("unknown command %q", command)
	}
}

func runAdd(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID (e.g., rank-listings)")
	displayName := fs.String("displayName", "", "Display Name (e.g., Rank Listings)")
	description := fs.String("description", "", "Description")
	category := fs.String("category", "", "Category (listings, data-access, analytics)")
	taskType := fs.String("taskType", "", "Camunda Task Type (defaults to id)")
	version := fs.String("version", "1.0.0", "Version")
	status := fs.String("status", registry.StatusPlanned, "Implementation Status (planned, in-progress, completed, verified)")
	timeout := fs.String("timeout", "10s", "Job timeout")
	retries := fs.Int("retries", 0, "Retries before an incident is raised")
	workflows := fs.String("workflows", "", "Comma separated workflow ids")
	tags := fs.String("tags", "", "Comma separated tags")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == "" || *displayName == "" || *description == "" || *category == "" {
		fs.Usage()
		return fmt.Errorf("id, displayName, description and category are required for add")
	}
	if *taskType == "" {
		*taskType = *id
	}

	reg, err := registry.LoadOrCreate(*path)
	if err != nil {
		return err
	}

	err = reg.Add(registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		InputSchema:          map[string]interface{}{"type": "object"},
		OutputSchema:         map[string]interface{}{"type": "object"},
		ErrorCodes:           []string{"PARSE_ERROR"},
		Timeout:              *timeout,
		Retries:              *retries,
		Workflows:            splitList(*workflows),
		Tags:                 splitList(*tags),
	})
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	id := fs.String("id", "", "Activity ID to update")
	field := fs.String("field", "", "Field to update (status, version, timeout, retries, ...)")
	value := fs.String("value", "", "New value for the field")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *id == "" || *field == "" || *value == "" {
		fs.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}
	if err := reg.Update(*id, *field, *value); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}

	fmt.Fprintf(out, "Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("validate", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}

	fmt.Fprintf(out, "Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

func runList(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(out)
	path := fs.String("path", defaultRegistryPath, "Path to registry file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return err
	}

	activities := append([]registry.Activity(nil), reg.Activities...)
	sort.Slice(activities, func(i, j int) bool {
		if activities[i].Category != activities[j].Category {
			return activities[i].Category < activities[j].Category
		}
		return activities[i].ID < activities[j].ID
	})
	for _, a := range activities {
		fmt.Fprintf(out, "%-12s %-28s %-12s retries=%d timeout=%s\n",
			a.Category, a.TaskType, a.ImplementationStatus, a.Retries, a.Timeout)
	}
	return nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func help(out io.Writer) {
	fmt.Fprintln(out, `
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  list     List registered activities
  help     Show this help message

Examples:
  registry-updater add -id rank-listings -displayName "Rank Listings" -description "Orders listings by relevance" -category listings
  registry-updater update -id rank-listings -field status -value completed
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
