package dto

import (
	"time"

	"github.com/noah-isme/educonnect-api/internal/models"
)

// ActivityListRequest defines filters for the audit log.
type ActivityListRequest struct {
	Page       int
	PageSize   int
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Since      *time.Time
}

// ActivityResponse serialises one audit entry.
type ActivityResponse struct {
	ID         uint                   `json:"id"`
	Actor      string                 `json:"actor"`
	ActorRole  string                 `json:"actor_role"`
	Action     string                 `json:"action"`
	EntityType string                 `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Metadata   map[string]interface{} `json:"metadata"`
	CreatedAt  time.Time              `json:"created_at"`
}

// ActivityListResponse wraps a page of audit entries.
type ActivityListResponse struct {
	Items      []ActivityResponse `json:"items"`
	Pagination PaginationMeta     `json:"pagination"`
}

// NewActivityResponse converts an activity log model into a DTO.
func NewActivityResponse(entry models.ActivityLog) ActivityResponse {
	metadata := map[string]interface{}{}
	for key, value := range entry.Metadata {
		metadata[key] = value
	}

	return ActivityResponse{
		ID:         entry.ID,
		Actor:      entry.Actor,
		ActorRole:  entry.ActorRole,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Metadata:   metadata,
		CreatedAt:  entry.CreatedAt,
	}
}
