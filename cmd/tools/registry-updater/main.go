// cmd/tools/registry-updater/main.go
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"accelerator-portal/internal/common/errors"
	"accelerator-portal/pkg/registry"
)

const defaultPath = "configs/activity-registry.json"

func main() {
	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "add":
		err = runAdd(os.Args[2:])
	case "update":
		err = runUpdate(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	default:
		help()
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runAdd(args []string) error {
	cmd := flag.NewFlagSet("add", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID (e.g., redeem-webinar-code)")
	displayName := cmd.String("displayName", "", "Display Name (e.g., Redeem Webinar Code)")
	description := cmd.String("description", "", "Description")
	category := cmd.String("category", "", "Category ("+strings.Join(registry.Categories, ", ")+")")
	taskType := cmd.String("taskType", "", "Zeebe task type; defaults to the id")
	version := cmd.String("version", "1.0.0", "Version")
	status := cmd.String("status", "planned", "Implementation Status ("+strings.Join(registry.Statuses, ", ")+")")
	timeout := cmd.String("timeout", "10s", "Job timeout")
	_ = cmd.Parse(args)

	if *id == "" || *displayName == "" || *category == "" {
		cmd.Usage()
		return fmt.Errorf("id, displayName and category are required for add")
	}
	if *taskType == "" {
		*taskType = *id
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		reg = &registry.ActivityRegistry{Version: "1.0.0"}
	}

	err = reg.Add(registry.Activity{
		ID:                   *id,
		DisplayName:          *displayName,
		Description:          *description,
		Category:             *category,
		Version:              *version,
		TaskType:             *taskType,
		ImplementationStatus: *status,
		ErrorCodes:           []string{},
		Timeout:              *timeout,
		Workflows:            []string{},
		Tags:                 []string{*category},
	}, time.Now())
	if err != nil {
		return err
	}
	if err := reg.Validate(knownCodes()); err != nil {
		return err
	}
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Added activity: %s\n", *id)
	return nil
}

func runUpdate(args []string) error {
	cmd := flag.NewFlagSet("update", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	id := cmd.String("id", "", "Activity ID to update")
	field := cmd.String("field", "", "Field to update (status, version, displayName, description, category, timeout, retries, errorCodes)")
	value := cmd.String("value", "", "New value for the field; errorCodes takes a comma-separated list")
	_ = cmd.Parse(args)

	if *id == "" || *field == "" || *value == "" {
		cmd.Usage()
		return fmt.Errorf("id, field and value are required for update")
	}

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	a, ok := reg.Find(*id)
	if !ok {
		return fmt.Errorf("activity with ID %s not found", *id)
	}

	switch *field {
	case "status":
		a.ImplementationStatus = *value
	case "version":
		a.Version = *value
	case "displayName":
		a.DisplayName = *value
	case "description":
		a.Description = *value
	case "category":
		a.Category = *value
	case "timeout":
		a.Timeout = *value
	case "retries":
		retries, err := strconv.Atoi(*value)
		if err != nil {
			return fmt.Errorf("invalid retries value: %w", err)
		}
		a.Retries = retries
	case "errorCodes":
		a.ErrorCodes = strings.Split(*value, ",")
	default:
		return fmt.Errorf("unknown field: %s", *field)
	}

	if err := reg.Validate(knownCodes()); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	if err := reg.Save(*path); err != nil {
		return err
	}
	fmt.Printf("Updated activity %s, field %s to %s\n", *id, *field, *value)
	return nil
}

func runValidate(args []string) error {
	cmd := flag.NewFlagSet("validate", flag.ExitOnError)
	path := cmd.String("path", defaultPath, "Path to registry file")
	_ = cmd.Parse(args)

	reg, err := registry.LoadRegistry(*path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(knownCodes()); err != nil {
		return fmt.Errorf("registry validation failed: %w", err)
	}
	fmt.Printf("Registry validation passed. Found %d activities.\n", len(reg.Activities))
	return nil
}

// knownCodes are the codes a worker may throw as BPMN errors.
func knownCodes() map[string]bool {
	known := make(map[string]bool, len(errors.BusinessCodes))
	for _, c := range errors.BusinessCodes {
		known[string(c)] = true
	}
	return known
}

func help() {
	fmt.Println(`
Usage: registry-updater <command> [flags]

Commands:
  add      Add a new activity to the registry
  update   Update an existing activity's field
  validate Validate the registry file
  help     Show this help message

Examples:
  registry-updater add -id redeem-webinar-code -displayName "Redeem Webinar Code" -category webinar
  registry-updater update -id redeem-webinar-code -field errorCodes -value WEBINAR_ALREADY_ATTENDED,RESOURCE_NOT_FOUND
  registry-updater validate -path configs/activity-registry.json

Use 'registry-updater <command> -h' for more information about a command.`)
}
