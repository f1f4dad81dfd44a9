package models

import (
	"time"

	"sigo-api/internal/entities"
)

// GroupResponse is a group without its members, as listed or written
type GroupResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	BackgroundImage *string   `json:"background_image,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// GroupDetailResponse is a single group with its active members. Members is
// always present, as an empty array when nobody belongs to the group.
type GroupDetailResponse struct {
	GroupResponse
	Members []UserResponse `json:"members"`
}

func NewGroupResponse(g *entities.Group) GroupResponse {
	return GroupResponse{
		ID:              g.ID,
		Name:            g.Name,
		Description:     g.Description,
		BackgroundImage: g.BackgroundImage,
		CreatedAt:       g.CreatedAt,
		UpdatedAt:       g.UpdatedAt,
	}
}

func NewGroupResponses(groups []*entities.Group) []GroupResponse {
	out := make([]GroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, NewGroupResponse(g))
	}
	return out
}

func NewGroupDetailResponse(g *entities.Group, members []*entities.User) GroupDetailResponse {
	return GroupDetailResponse{
		GroupResponse: NewGroupResponse(g),
		Members:       NewUserResponses(members),
	}
}
