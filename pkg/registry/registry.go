// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "activity-signup/internal/common/errors"
	"activity-signup/internal/common/validation"
	"activity-signup/internal/models"
)

// LoadCatalog reads and schema-checks a catalog file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog validates data against the catalog schema before decoding it.
func ParseCatalog(data []byte) (*Catalog, error) {
	result := validation.ValidateCatalog(data)
	if !result.Valid {
		return nil, apperrors.NewCatalogInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, apperrors.NewCatalogInvalidError(err.Error())
	}
	return &c, nil
}

// Activities converts the catalog into directory seed records.
func (c *Catalog) Activities() []models.Activity {
	out := make([]models.Activity, 0, len(c.Entries))
	for _, e := range c.Entries {
		participants := e.Participants
		if participants == nil {
			participants = []string{}
		}
		out = append(out, models.Activity{
			Name:            e.Name,
			Description:     e.Description,
			Schedule:        e.Schedule,
			MaxParticipants: e.MaxParticipants,
			Participants:    participants,
		})
	}
	return out
}

// SaveCatalog writes c as indented JSON, creating parent directories.
// Nil slices are written as empty arrays so the file passes the schema.
func SaveCatalog(c *Catalog, path string) error {
	out := Catalog{Version: c.Version, Entries: make([]CatalogEntry, 0, len(c.Entries))}
	for _, e := range c.Entries {
		if e.Participants == nil {
			e.Participants = []string{}
		}
		out.Entries = append(out.Entries, e)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write catalog file: %w", err)
	}
	return nil
}

// Find returns the index of the named entry, or -1.
func (c *Catalog) Find(name string) int {
	for i := range c.Entries {
		if c.Entries[i].Name == name {
			return i
		}
	}
	return -1
}
