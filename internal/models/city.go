package models

import (
	"time"
)

// City is a normalized city record that articles link to. Cities are
// owned by an upstream service; this service only references them and
// maintains the link tables.
type City struct {
	ID        string    `json:"id" db:"id"`
	Slug      string    `json:"slug" db:"slug"`
	Name      string    `json:"name" db:"name"`
	NameEn    string    `json:"name_en,omitempty" db:"name_en"`
	Hidden    bool      `json:"hidden" db:"hidden"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CityAlias is an alternative name for a city, used when resolving raw
// city strings typed by authors
type CityAlias struct {
	CityID  string `json:"city_id" db:"city_id"`
	Alias   string `json:"alias" db:"alias"`
	Primary bool   `json:"primary" db:"is_primary"`
}
