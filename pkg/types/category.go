package types

import "time"

type CategoryKind string

const (
	CategoryKindBuiltin CategoryKind = "builtin"
	CategoryKindDynamic CategoryKind = "dynamic"
)

// Internal names of the built-in categories. Each one has a dedicated
// detail table; everything else goes through category_fields.
const (
	CategoryFood      = "food"
	CategoryClothes   = "clothes"
	CategoryEducation = "education"
)

type Category struct {
	ID           string       `db:"id" json:"id"`
	Name         string       `db:"name" json:"name"` // machine-readable, immutable after creation
	DisplayName  string       `db:"display_name" json:"display_name"`
	Description  *string      `db:"description" json:"description"`
	Icon         *string      `db:"icon" json:"icon"`
	Color        *string      `db:"color" json:"color"`
	Kind         CategoryKind `db:"kind" json:"kind"`
	IsActive     bool         `db:"is_active" json:"is_active"`
	DisplayOrder int          `db:"display_order" json:"display_order"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
}

type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeFile     FieldType = "file"
)

type CategoryField struct {
	ID           string    `db:"id" json:"id"`
	CategoryID   string    `db:"category_id" json:"category_id"`
	Name         string    `db:"name" json:"name"`
	Label        string    `db:"label" json:"label"`
	Type         FieldType `db:"field_type" json:"field_type"`
	Required     bool      `db:"required" json:"required"`
	Options      []string  `db:"options" json:"options"` // jsonb array, select/radio only
	Placeholder  *string   `db:"placeholder" json:"placeholder"`
	DisplayOrder int       `db:"display_order" json:"display_order"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CauseCategoryValue is one stored (cause, field) pair under the dynamic
// mechanism. The value is always persisted as text and re-typed on read.
type CauseCategoryValue struct {
	CauseID    string    `db:"cause_id" json:"cause_id"`
	CategoryID string    `db:"category_id" json:"category_id"`
	FieldID    string    `db:"field_id" json:"field_id"`
	Value      string    `db:"value" json:"value"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ResolvedValue is a stored value joined with its field definition and
// interpreted per the field's declared type.
type ResolvedValue struct {
	FieldID string    `json:"field_id"`
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Type    FieldType `json:"type"`
	Raw     string    `json:"raw"`
	Value   any       `json:"value"`
}
