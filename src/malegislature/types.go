package malegislature

import (
	"encoding/xml"
	"strings"
)

// RawHearing is a hearing detail payload as fetched from the portal. The
// payload shape is not contractually stable: any field may be missing,
// empty, or malformed, so everything optional is a pointer and the
// normalizer decides what to do about absence.
type RawHearing struct {
	EventID     *int64       `json:"EventId"`
	Name        *string      `json:"Name"`
	Description *string      `json:"Description"`
	EventDate   *string      `json:"EventDate"`
	StartTime   *string      `json:"StartTime"`
	Status      *string      `json:"Status"`
	Location    *RawLocation `json:"Location"`
	HearingHost *RawHost     `json:"HearingHost"`
}

type RawLocation struct {
	LocationName *string `json:"LocationName"`
	AddressLine1 *string `json:"AddressLine1"`
	AddressLine2 *string `json:"AddressLine2"`
	City         *string `json:"City"`
	State        *string `json:"State"`
	ZipCode      *string `json:"ZipCode"`
}

type RawHost struct {
	CommitteeCode *string `json:"CommitteeCode"`
	CommitteeName *string `json:"CommitteeName"`
}

// legacyHearing is the flat XML document shape still served by some of the
// older hearing endpoints.
type legacyHearing struct {
	XMLName     xml.Name `xml:"Hearing"`
	Title       string   `xml:"Title"`
	Description string   `xml:"Description"`
	EventDate   string   `xml:"EventDate"`
	Location    string   `xml:"Location"`
	Committee   string   `xml:"Committee"`
}

func (h legacyHearing) toRaw() *RawHearing {
	raw := &RawHearing{
		Name:        optional(h.Title),
		Description: optional(h.Description),
		EventDate:   optional(h.EventDate),
	}
	if loc := optional(h.Location); loc != nil {
		raw.Location = &RawLocation{LocationName: loc}
	}
	if committee := optional(h.Committee); committee != nil {
		raw.HearingHost = &RawHost{CommitteeCode: committee}
	}
	return raw
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
