package dto

import "studyreserve/internal/domain/spaces"

type SpaceResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Location   string `json:"location"`
	Capacity   int    `json:"capacity"`
	Equipment  string `json:"equipment,omitempty"`
	NoiseLevel string `json:"noise_level,omitempty"`
	ImageURL   string `json:"image_url,omitempty"`
}

func FromSpace(s *spaces.StudySpace) SpaceResponse {
	return SpaceResponse{
		ID:         string(s.ID),
		Name:       s.Name,
		Type:       s.Type,
		Location:   s.Location,
		Capacity:   s.Capacity,
		Equipment:  s.Equipment,
		NoiseLevel: string(s.NoiseLevel),
		ImageURL:   s.ImageURL,
	}
}

func FromSpaces(list []*spaces.StudySpace) []SpaceResponse {
	out := make([]SpaceResponse, 0, len(list))
	for _, s := range list {
		out = append(out, FromSpace(s))
	}
	return out
}
