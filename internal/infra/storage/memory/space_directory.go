package memory

import (
	"context"
	"sort"
	"sync"

	"studyreserve/internal/domain/spaces"
)

// SpaceDirectory is the in-memory study-space catalog, populated from
// fixtures at startup.
type SpaceDirectory struct {
	mu    sync.RWMutex
	items map[spaces.SpaceID]*spaces.StudySpace
}

func NewSpaceDirectory() *SpaceDirectory {
	return &SpaceDirectory{items: make(map[spaces.SpaceID]*spaces.StudySpace)}
}

func (d *SpaceDirectory) Add(ctx context.Context, s *spaces.StudySpace) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	cp := *s
	d.items[s.ID] = &cp
	return nil
}

// Seed loads fixture spaces at startup.
func (d *SpaceDirectory) Seed(ctx context.Context, list []*spaces.StudySpace) error {
	for _, s := range list {
		if err := d.Add(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

func (d *SpaceDirectory) ByID(ctx context.Context, id spaces.SpaceID) (*spaces.StudySpace, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.items[id]
	if !ok {
		return nil, spaces.ErrSpaceNotFound
	}
	cp := *s
	return &cp, nil
}

func (d *SpaceDirectory) Exists(ctx context.Context, id spaces.SpaceID) (bool, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.items[id]
	return ok, nil
}

func (d *SpaceDirectory) List(ctx context.Context) ([]*spaces.StudySpace, error) {
	return d.Search(ctx, spaces.SearchParams{})
}

func (d *SpaceDirectory) Search(ctx context.Context, params spaces.SearchParams) ([]*spaces.StudySpace, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]*spaces.StudySpace, 0, len(d.items))
	for _, s := range d.items {
		if !params.Matches(s) {
			continue
		}
		cp := *s
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
