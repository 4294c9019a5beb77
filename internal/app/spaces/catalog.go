// Package spaces exposes the read-only study-space catalog. Catalog
// management lives elsewhere; this service only resolves and filters.
package spaces

import (
	"context"

	domainspaces "studyreserve/internal/domain/spaces"
)

type Catalog struct {
	directory domainspaces.Directory
}

func NewCatalog(directory domainspaces.Directory) *Catalog {
	return &Catalog{directory: directory}
}

func (c *Catalog) List(ctx context.Context) ([]*domainspaces.StudySpace, error) {
	return c.directory.List(ctx)
}

func (c *Catalog) Get(ctx context.Context, id domainspaces.SpaceID) (*domainspaces.StudySpace, error) {
	return c.directory.ByID(ctx, id)
}

func (c *Catalog) Search(ctx context.Context, params domainspaces.SearchParams) ([]*domainspaces.StudySpace, error) {
	return c.directory.Search(ctx, params)
}
