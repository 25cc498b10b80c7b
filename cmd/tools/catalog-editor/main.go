// cmd/tools/catalog-editor/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"activity-signup/internal/directory"
	"activity-signup/pkg/registry"
)

var catalogPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	updateCmd := flag.NewFlagSet("update", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	for _, fsFlags := range []*flag.FlagSet{addCmd, updateCmd, validateCmd} {
		fsFlags.StringVar(&catalogPath, "path", "configs/activities.json", "Path to catalog file")
	}

	// Add command flags
	name := addCmd.String("name", "", "Activity name (e.g., Drama Club)")
	description := addCmd.String("description", "", "Description")
	schedule := addCmd.String("schedule", "", "Schedule (e.g., Mondays, 4:00 PM - 5:30 PM)")
	maxParticipants := addCmd.Int("max", 0, "Maximum participants")

	// Update command flags
	nameUpdate := updateCmd.String("name", "", "Activity name to update")
	field := updateCmd.String("field", "", "Field to update (description, schedule, max_participants)")
	value := updateCmd.String("value", "", "New value for the field")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *name == "" || *description == "" || *schedule == "" {
			fmt.Println("Error: name, description, and schedule are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		entry := registry.CatalogEntry{
			Name:            *name,
			Description:     *description,
			Schedule:        *schedule,
			MaxParticipants: *maxParticipants,
			Participants:    []string{},
		}
		if err := addActivity(catalogPath, entry); err != nil {
			fmt.Printf("Error adding activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added activity: %s\n", *name)

	case "update":
		updateCmd.Parse(os.Args[2:])
		if *nameUpdate == "" || *field == "" || *value == "" {
			fmt.Println("Error: name, field, and value are required for update.")
			updateCmd.Usage()
			os.Exit(1)
		}
		if err := updateActivity(catalogPath, *nameUpdate, *field, *value); err != nil {
			fmt.Printf("Error updating activity: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Updated activity %s, field %s to %s\n", *nameUpdate, *field, *value)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		count, err := validateCatalog(catalogPath)
		if err != nil {
			fmt.Printf("Catalog validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Catalog validation passed. Found %d activities.\n", count)

	case "help":
		fallthrough
	default:
		help()
	}
}

func addActivity(path string, entry registry.CatalogEntry) error {
	catalog, err := registry.LoadCatalog(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
		catalog = &registry.Catalog{}
	}

	if catalog.Find(entry.Name) >= 0 {
		return fmt.Errorf("activity %s already exists", entry.Name)
	}

	catalog.Entries = append(catalog.Entries, entry)
	catalog.Version = time.Now().UTC().Format("2006-01")
	return registry.SaveCatalog(catalog, path)
}

func updateActivity(path, name, field, value string) error {
	catalog, err := registry.LoadCatalog(path)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	i := catalog.Find(name)
	if i < 0 {
		return fmt.Errorf("activity %s not found", name)
	}

	switch field {
	case "description":
		catalog.Entries[i].Description = value
	case "schedule":
		catalog.Entries[i].Schedule = value
	case "max_participants":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid max_participants value: %q", value)
		}
		catalog.Entries[i].MaxParticipants = n
	default:
		return fmt.Errorf("unknown field: %s", field)
	}

	return registry.SaveCatalog(catalog, path)
}

// validateCatalog runs the schema check and then builds a directory from the
// result, which catches duplicate names and duplicate seeded emails.
func validateCatalog(path string) (int, error) {
	catalog, err := registry.LoadCatalog(path)
	if err != nil {
		return 0, err
	}
	if len(catalog.Entries) == 0 {
		return 0, fmt.Errorf("catalog contains no activities")
	}
	if _, err := directory.New(catalog.Activities()); err != nil {
		return 0, err
	}
	return len(catalog.Entries), nil
}

func help() {
	fmt.Println(`
Usage: catalog-editor <command> [flags]

Commands:
  add      Add a new activity to the catalog
  update   Update an existing activity's field
  validate Validate the catalog file
  help     Show this help message

Examples:
  catalog-editor add -name "Drama Club" -description "Stage plays and improv" -schedule "Mondays, 4:00 PM - 5:30 PM" -max 20
  catalog-editor update -name "Drama Club" -field max_participants -value 25
  catalog-editor validate -path configs/activities.json

Use 'catalog-editor <command> -h' for more information about a command.
`)
}
