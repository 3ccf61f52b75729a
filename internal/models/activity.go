package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityLog is one audit entry: who did what to which paper, submission
// group or account. Actor keeps the username at the time of the action.
type ActivityLog struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	Actor      string            `gorm:"size:64;not null;index" json:"actor"`
	ActorRole  string            `gorm:"size:16;not null" json:"actor_role"`
	Action     string            `gorm:"size:64;not null;index" json:"action"`
	EntityType string            `gorm:"size:32;not null;index:idx_activity_entity" json:"entity_type"`
	EntityID   string            `gorm:"size:64;index:idx_activity_entity" json:"entity_id"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata"`
	CreatedAt  time.Time         `gorm:"index" json:"created_at"`
}

// TableName pins the table name used by the schema.
func (ActivityLog) TableName() string {
	return "activity_logs"
}
