// pkg/registry/schema.go
package registry

// Catalog is the on-disk form of an activity seed.
type Catalog struct {
	Version string         `json:"version"`
	Entries []CatalogEntry `json:"activities"`
}

type CatalogEntry struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}
