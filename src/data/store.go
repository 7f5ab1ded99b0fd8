package data

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
	"gorm.io/gorm"
)

// ErrDuplicate reports that an insert hit the provenance unique index, i.e.
// another run wrote the same record first.
var ErrDuplicate = errors.New("record already exists")

// EventStore is the slice of the shared store the sync pipeline needs.
type EventStore interface {
	Exists(title, organizer string) (bool, error)
	InsertEvent(ev *CivicEvent) error
	UpsertIntegration(name, endpoint, blob string, ttl time.Duration) error
	LatestIntegration(name string) (*APIIntegration, error)
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// NaturalKeyHash fingerprints the (title, organizer) pair for the indexed
// dedup lookup.
func NaturalKeyHash(title, organizer string) uint64 {
	h := xxhash.NewS64(0)
	_, _ = h.WriteString(title)
	_, _ = h.WriteString("|")
	_, _ = h.WriteString(organizer)
	return h.Sum64()
}

// Exists reports whether a record with the same title and organizer is
// already stored. The hash narrows the lookup; the exact match guards
// against fingerprint collisions.
func (s *Store) Exists(title, organizer string) (bool, error) {
	var count int64
	err := s.db.Model(&CivicEvent{}).
		Where("natural_key_hash = ? AND title = ? AND organizer = ?",
			NaturalKeyHash(title, organizer), title, organizer).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return count > 0, nil
}

// InsertEvent writes a new record. Duplicate-key failures surface as
// ErrDuplicate so overlapping runs can treat them as an existing record
// rather than an error.
func (s *Store) InsertEvent(ev *CivicEvent) error {
	ev.NaturalKeyHash = NaturalKeyHash(ev.Title, ev.Organizer)
	if err := s.db.Create(ev).Error; err != nil {
		if isDuplicateErr(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// UpsertIntegration merges the bookkeeping row for one source name: update
// every non-key field if the row exists, insert otherwise.
func (s *Store) UpsertIntegration(name, endpoint, blob string, ttl time.Duration) error {
	now := time.Now().UTC()
	res := s.db.Model(&APIIntegration{}).Where("api_name = ?", name).
		Updates(map[string]interface{}{
			"endpoint":     endpoint,
			"data":         blob,
			"last_updated": now,
			"expires_at":   now.Add(ttl),
			"status":       "active",
		})
	if res.Error != nil {
		return fmt.Errorf("update integration: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	row := APIIntegration{
		APIName:     name,
		Endpoint:    endpoint,
		Data:        blob,
		LastUpdated: now,
		ExpiresAt:   now.Add(ttl),
		Status:      "active",
	}
	if err := s.db.Create(&row).Error; err != nil && !isDuplicateErr(err) {
		return fmt.Errorf("insert integration: %w", err)
	}
	return nil
}

func (s *Store) LatestIntegration(name string) (*APIIntegration, error) {
	var row APIIntegration
	if err := s.db.Where("api_name = ?", name).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func isDuplicateErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "duplicate key")
}
