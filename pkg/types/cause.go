package types

import (
	"time"
)

type CauseStatus string

const (
	CauseStatusPending   CauseStatus = "PENDING"
	CauseStatusActive    CauseStatus = "ACTIVE"
	CauseStatusCompleted CauseStatus = "COMPLETED"
	CauseStatusSuspended CauseStatus = "SUSPENDED"
	CauseStatusArchived  CauseStatus = "ARCHIVED"
)

type CausePriority string

const (
	CausePriorityLow    CausePriority = "LOW"
	CausePriorityMedium CausePriority = "MEDIUM"
	CausePriorityHigh   CausePriority = "HIGH"
	CausePriorityUrgent CausePriority = "URGENT"
)

type Cause struct {
	ID         string `db:"id" json:"id"`
	UserID     string `db:"user_id" json:"user_id"`
	CategoryID string `db:"category_id" json:"category_id"`

	Title            string  `db:"title" json:"title"`
	Description      string  `db:"description" json:"description"`
	ShortDescription *string `db:"short_description" json:"short_description"`

	CauseLocation

	Status   CauseStatus   `db:"status" json:"status"`
	Priority CausePriority `db:"priority" json:"priority"`
	Tags     []string      `db:"tags" json:"tags"`    // jsonb array, ordered
	Gallery  []string      `db:"gallery" json:"gallery"` // jsonb array of media references

	GoalCount     int `db:"goal_count" json:"goal_count"`
	ProgressCount int `db:"progress_count" json:"progress_count"`

	ContactEmail *string `db:"contact_email" json:"contact_email"`
	ContactPhone *string `db:"contact_phone" json:"contact_phone"`

	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
	ExpiresAt   *time.Time `db:"expires_at" json:"expires_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at"`
}

type CauseLocation struct {
	Location  string   `db:"location" json:"location" form:"location"`
	Latitude  *float64 `db:"latitude" json:"latitude" form:"latitude"`
	Longitude *float64 `db:"longitude" json:"longitude" form:"longitude"`
}

// CausePayload is the resolved category payload for a cause. Exactly one
// branch is populated, selected by the category's discriminator.
type CausePayload struct {
	Food      *FoodDetails      `json:"food,omitempty"`
	Clothes   *ClothesDetails   `json:"clothes,omitempty"`
	Education *EducationDetails `json:"education,omitempty"`
	Values    []ResolvedValue   `json:"values,omitempty"`
}

type CauseWithPayload struct {
	Cause
	Payload CausePayload `db:"-" json:"payload"`
}

// CausePayloadInput is the submitted payload on create/update. For a
// built-in category the matching typed branch must be set; for a dynamic
// category Values maps field names to raw string values.
type CausePayloadInput struct {
	Food      *FoodDetails      `json:"food,omitempty"`
	Clothes   *ClothesDetails   `json:"clothes,omitempty"`
	Education *EducationDetails `json:"education,omitempty"`
	Values    map[string]string `json:"values,omitempty"`
}

// CauseFilter carries the recognized listing options. Form tags match the
// query parameters accepted by the list endpoint.
type CauseFilter struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Category string `form:"category"`
	Status   string `form:"status"`
	Priority string `form:"priority"`
	Location string `form:"location"`
	Search   string `form:"search"`
	Tag      string `form:"tag"`
	Sort     string `form:"sort"`
	Order    string `form:"order"`

	// WithPayload resolves category payloads per row. Off by default to
	// keep list views to a single query.
	WithPayload bool `form:"with_payload"`
}
