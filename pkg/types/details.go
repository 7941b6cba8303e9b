package types

import "time"

// Built-in detail records. Each is keyed by the owning cause's id (1:1),
// not an independently generated id.

type FoodDetails struct {
	CauseID             string     `db:"cause_id" json:"-"`
	FoodType            string     `db:"food_type" json:"food_type"`
	Quantity            int        `db:"quantity" json:"quantity"`
	Unit                string     `db:"unit" json:"unit"`
	DietaryRestrictions []string   `db:"dietary_restrictions" json:"dietary_restrictions"`
	ExpirationDate      *time.Time `db:"expiration_date" json:"expiration_date"`
	Temperature         string     `db:"temperature" json:"temperature"`
}

type ClothesDetails struct {
	CauseID     string   `db:"cause_id" json:"-"`
	ClothesType string   `db:"clothes_type" json:"clothes_type"`
	Sizes       []string `db:"sizes" json:"sizes"`
	Condition   string   `db:"condition" json:"condition"`
	Season      string   `db:"season" json:"season"`
	AgeGroup    string   `db:"age_group" json:"age_group"`
	Quantity    int      `db:"quantity" json:"quantity"`
}

type EducationDetails struct {
	CauseID        string     `db:"cause_id" json:"-"`
	Topics         []string   `db:"topics" json:"topics"`
	Schedule       *string    `db:"schedule" json:"schedule"`
	StartDate      *time.Time `db:"start_date" json:"start_date"`
	EndDate        *time.Time `db:"end_date" json:"end_date"`
	Instructor     *string    `db:"instructor" json:"instructor"`
	DeliveryMethod string     `db:"delivery_method" json:"delivery_method"`
	PriceCents     int        `db:"price_cents" json:"price_cents"`
	MaxStudents    *int       `db:"max_students" json:"max_students"`
}
