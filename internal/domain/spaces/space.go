package spaces

import (
	"context"
	"errors"
	"strings"
)

var ErrSpaceNotFound = errors.New("spaces: not found")

type SpaceID string

type NoiseLevel string

const (
	NoiseSilent        NoiseLevel = "SILENT"
	NoiseQuiet         NoiseLevel = "QUIET"
	NoiseModerate      NoiseLevel = "MODERATE"
	NoiseCollaborative NoiseLevel = "COLLABORATIVE"
)

// StudySpace is a bookable unit. The engine never mutates spaces, it only
// resolves them through a Directory.
type StudySpace struct {
	ID         SpaceID
	Name       string
	Type       string // room, pod, hall
	Location   string
	Capacity   int
	Equipment  string
	NoiseLevel NoiseLevel
	ImageURL   string
}

// Directory is the read-only lookup the engine depends on.
type Directory interface {
	ByID(ctx context.Context, id SpaceID) (*StudySpace, error)
	Exists(ctx context.Context, id SpaceID) (bool, error)
	List(ctx context.Context) ([]*StudySpace, error)
	Search(ctx context.Context, params SearchParams) ([]*StudySpace, error)
}

// SearchParams filters the catalog. Zero values mean "any".
type SearchParams struct {
	Name        string
	Location    string
	Type        string
	MinCapacity int
	NoiseLevel  NoiseLevel
}

// Matches applies the filters to a single space; directory implementations
// share it so catalog behavior stays identical across backends.
func (p SearchParams) Matches(s *StudySpace) bool {
	if p.Name != "" && !containsFold(s.Name, p.Name) {
		return false
	}
	if p.Location != "" && !containsFold(s.Location, p.Location) {
		return false
	}
	if p.Type != "" && !strings.EqualFold(s.Type, p.Type) {
		return false
	}
	if p.MinCapacity > 0 && s.Capacity < p.MinCapacity {
		return false
	}
	if p.NoiseLevel != "" && s.NoiseLevel != p.NoiseLevel {
		return false
	}
	return true
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

// ParseNoiseLevel validates a caller-supplied noise level string.
func ParseNoiseLevel(s string) (NoiseLevel, bool) {
	switch NoiseLevel(strings.ToUpper(strings.TrimSpace(s))) {
	case NoiseSilent:
		return NoiseSilent, true
	case NoiseQuiet:
		return NoiseQuiet, true
	case NoiseModerate:
		return NoiseModerate, true
	case NoiseCollaborative:
		return NoiseCollaborative, true
	default:
		return "", false
	}
}
