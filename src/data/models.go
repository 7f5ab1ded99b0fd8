package data

import "time"

// CivicEvent mirrors the civic_actions table shared with the main
// application. Rows written by this service are created once and never
// updated or deleted; later syncs skip instead of overwriting.
type CivicEvent struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Title              string    `gorm:"size:512;not null" json:"title"`
	Description        string    `gorm:"type:text" json:"description"`
	Category           string    `gorm:"size:64" json:"category"`
	Location           string    `gorm:"size:512" json:"location"`
	StartsAt           time.Time `gorm:"column:date_time;not null" json:"startsAt"`
	Organizer          string    `gorm:"size:255" json:"organizer"`
	ContactInfo        string    `gorm:"type:text" json:"contactInfo"`
	Requirements       string    `gorm:"type:text" json:"requirements"`
	AccessibilityNotes *string   `gorm:"type:text" json:"accessibilityNotes"`
	VirtualLink        *string   `gorm:"size:512" json:"virtualLink"`
	Tags               string    `gorm:"type:text" json:"tags"`
	Status             string    `gorm:"size:32" json:"status"`
	Priority           string    `gorm:"size:32" json:"priority"`

	// Provenance of the upstream record. The unique index is the
	// authoritative dedup key; the (title, organizer) gate remains for rows
	// predating provenance.
	Source     string `gorm:"size:64;uniqueIndex:idx_source_external" json:"source"`
	ExternalID string `gorm:"size:64;uniqueIndex:idx_source_external" json:"externalId"`

	// xxhash64 of "title|organizer", indexed so the legacy gate does not
	// scan two text columns.
	NaturalKeyHash uint64 `gorm:"index" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (CivicEvent) TableName() string { return "civic_actions" }

// APIIntegration is the per-source bookkeeping row recording the outcome and
// freshness of the last sync. One row per source name, overwritten in full
// on every run.
type APIIntegration struct {
	APIName     string    `gorm:"column:api_name;primaryKey;size:64" json:"apiName"`
	Endpoint    string    `gorm:"size:255" json:"endpoint"`
	Data        string    `gorm:"type:text" json:"data"`
	LastUpdated time.Time `json:"lastUpdated"`
	ExpiresAt   time.Time `json:"expiresAt"`
	Status      string    `gorm:"size:32" json:"status"`
}

func (APIIntegration) TableName() string { return "api_integrations" }
