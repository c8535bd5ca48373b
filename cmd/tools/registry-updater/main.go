// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"psychometric-workers/pkg/registry"
)

const defaultPath = "configs/activity-registry.json"

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportPath := exportCmd.String("path", defaultPath, "Path to write the registry to")
	version := exportCmd.String("version", "1.0.0", "Version stamped on every activity")

	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	updatePath := updateCmd.String("path", defaultPath, "Path to registry file")
	idUpdate := updateCmd.String("id", "", "Activity ID to update")
	status := updateCmd.String("status", "", "New implementation status")

	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validatePath := validateCmd.String("path", defaultPath, "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		reg := registry.Psychometric(*version)
		reg.LastUpdated = time.Now().Format(time.RFC3339)
		if err := saveRegistry(reg, *exportPath); err != nil {
			fmt.Printf("Error exporting registry: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %d activities to %s\n", len(reg.Activities), *exportPath)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *idUpdate == "" || *status == "" {
			fmt.Println("Error: id and status are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateStatus(*updatePath, *idUpdate, *status); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s status to %s\n", *idUpdate, *status)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.LoadRegistry(*validatePath)
		if err == nil && len(reg.Activities) == 0 {
			err = fmt.Errorf("registry contains no activities")
		}
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Registry validation passed.")

	default:
		help()
	}
}

func updateStatus(path, id, status string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	for i := range reg.Activities {
		if reg.Activities[i].ID == id {
			reg.Activities[i].ImplementationStatus = status
			reg.LastUpdated = time.Now().Format(time.RFC3339)
			return saveRegistry(reg, path)
		}
	}
	return fmt.Errorf("activity with ID %s not found", id)
}

func saveRegistry(reg *registry.ActivityRegistry, path string) error {
	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func help() {
	fmt.Println(`Usage: registry-updater <command> [options]

Commands:
  export    Write the built-in psychometric activity catalog
  update    Change an activity's implementation status
  validate  Check task type naming and uniqueness`)
}
