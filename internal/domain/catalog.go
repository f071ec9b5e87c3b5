package domain

import "time"

// CatalogItem is the read-only view of an inventory item the orchestrator
// consumes. Catalog data is owned by an external collaborator and never
// mutated here.
type CatalogItem struct {
	ID          string
	Name        string
	Description string
	Images      []string
	CreatedAt   time.Time
}

// PrimaryImage returns the first non-empty item image, or "".
func (i CatalogItem) PrimaryImage() string {
	for _, img := range i.Images {
		if img != "" {
			return img
		}
	}
	return ""
}
