package civicsync

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/community-clarity/civic-sync/src/data"
	"github.com/community-clarity/civic-sync/src/malegislature"
)

const (
	SourceName      = "ma_legislature"
	IntegrationName = "ma_legislature_hearings"
	SourceWebsite   = "https://malegislature.gov"

	categoryHearing  = "Legislative Hearing"
	defaultVenue     = "Massachusetts State House"
	defaultOrganizer = "Massachusetts Legislature"

	accessibilityNote = "Accessibility accommodations available. See event details for specific information."
)

var (
	defaultTags         = []string{"government", "legislature", "public-hearing"}
	defaultRequirements = []string{"Public hearing - open to all"}
)

// ContactInfo records the provenance of an ingested record.
type ContactInfo struct {
	Source    string `json:"source"`
	HearingID string `json:"hearing_id"`
	Website   string `json:"website"`
}

var (
	datePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4}`),
		regexp.MustCompile(`\d{4}-\d{2}-\d{2}`),
		regexp.MustCompile(`(?i)(?:January|February|March|April|May|June|July|August|September|October|November|December)\s+\d{1,2},?\s+\d{4}`),
		regexp.MustCompile(`(?i)\d{1,2}\s+(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\s+\d{4}`),
	}

	virtualLinkPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(https?://\S+zoom\S*)`),
		regexp.MustCompile(`(?i)(https?://\S+teams\S*)`),
		regexp.MustCompile(`(?i)(https?://\S+meet\S*)`),
	}

	accessibilityKeywords = regexp.MustCompile(`(?i)ASL|sign language|interpretation|accessible|wheelchair|disability`)
	genericTitlePattern   = regexp.MustCompile(`^Legislative Hearing \d+$`)
)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006",
	"January 2, 2006",
	"January 2 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Normalizer turns raw portal payloads into canonical civic events. Every
// field has an ordered fallback chain because the upstream shape is
// inconsistent: records arrive without descriptions, structured locations,
// or any date field at all.
type Normalizer struct {
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewNormalizer() *Normalizer {
	return &Normalizer{
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
}

// Normalize builds a CivicEvent from a raw hearing payload. It fails only
// when there is no payload to work from; a synthetic title can always be
// constructed from the identifier.
func (n *Normalizer) Normalize(raw *malegislature.RawHearing, id string) (*data.CivicEvent, error) {
	if raw == nil {
		return nil, fmt.Errorf("hearing %s: empty payload", id)
	}

	desc := n.clean(deref(raw.Description))
	name := n.clean(deref(raw.Name))
	code, committee := hostInfo(raw.HearingHost)

	title := n.buildTitle(raw, id, desc, name, code, committee)

	description := desc
	if description == "" {
		if code != "" {
			description = code + " public hearing"
		} else {
			description = "Massachusetts Legislature public hearing"
		}
	}

	organizer := code
	if organizer == "" {
		organizer = defaultOrganizer
	}

	contact, _ := json.Marshal(ContactInfo{Source: SourceName, HearingID: id, Website: SourceWebsite})
	requirements, _ := json.Marshal(defaultRequirements)
	tags, _ := json.Marshal(defaultTags)

	return &data.CivicEvent{
		Title:              title,
		Description:        description,
		Category:           categoryHearing,
		Location:           buildLocation(raw.Location),
		StartsAt:           n.resolveStart(raw, title, description),
		Organizer:          organizer,
		ContactInfo:        string(contact),
		Requirements:       string(requirements),
		AccessibilityNotes: accessibilityNotes(description),
		VirtualLink:        virtualLink(description),
		Tags:               string(tags),
		Status:             "active",
		Priority:           "normal",
		Source:             SourceName,
		ExternalID:         id,
	}, nil
}

// buildTitle walks the title fallback chain: description text, payload name,
// committee code, location name, event date, committee name, and finally a
// generic identifier-based title. A second pass replaces titles that are
// exactly the generic fallback with a committee-based one when committee
// metadata is available.
func (n *Normalizer) buildTitle(raw *malegislature.RawHearing, id, desc, name, code, committee string) string {
	title := desc
	if title == "" {
		title = name
	}
	if title == "" {
		locName := ""
		if raw.Location != nil {
			locName = strings.TrimSpace(deref(raw.Location.LocationName))
		}
		switch {
		case code != "":
			title = code + " Public Hearing"
		case locName != "":
			title = "Public Hearing - " + locName
		default:
			if when, ok := parseWhen(deref(raw.EventDate)); ok {
				title = fmt.Sprintf("Public Hearing - %s %d", when.Month(), when.Day())
			} else if committee != "" {
				title = committee + " Public Hearing"
			} else {
				title = "Legislative Hearing " + id
			}
		}
	}

	title = strings.TrimSpace(title)
	if title == "Legislative Hearing" || genericTitlePattern.MatchString(title) {
		info := committee
		if info == "" {
			info = code
		}
		if info != "" {
			title = info + " Public Hearing"
		} else {
			title = "Massachusetts Legislature Public Hearing"
		}
	}
	return title
}

// resolveStart walks the date fallback chain: event date, start time, a
// regex scan of the constructed title and description, and finally the next
// Monday at 10:00. Strings that fail to parse are treated as absent.
func (n *Normalizer) resolveStart(raw *malegislature.RawHearing, title, description string) time.Time {
	if when, ok := parseWhen(deref(raw.EventDate)); ok {
		return when
	}
	if when, ok := parseWhen(deref(raw.StartTime)); ok {
		return when
	}

	text := title + " " + description
	for _, re := range datePatterns {
		if m := re.FindString(text); m != "" {
			if when, ok := parseWhen(m); ok {
				return when
			}
		}
	}

	return nextWeekday(n.now(), time.Monday, 10)
}

// clean strips markup and entities from portal text before any heuristics
// run against it.
func (n *Normalizer) clean(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(n.sanitizer.Sanitize(s)))
}

func buildLocation(loc *malegislature.RawLocation) string {
	if loc == nil {
		return defaultVenue
	}
	var parts []string
	for _, f := range []*string{loc.LocationName, loc.AddressLine1, loc.City, loc.State, loc.ZipCode} {
		if v := strings.TrimSpace(deref(f)); v != "" {
			parts = append(parts, v)
		}
	}
	if len(parts) == 0 {
		return defaultVenue
	}
	return strings.Join(parts, " ")
}

func hostInfo(host *malegislature.RawHost) (code, name string) {
	if host == nil {
		return "", ""
	}
	return strings.TrimSpace(deref(host.CommitteeCode)), strings.TrimSpace(deref(host.CommitteeName))
}

func parseWhen(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// nextWeekday returns the next occurrence of day at hour:00 relative to now;
// today counts when the weekday already matches.
func nextWeekday(now time.Time, day time.Weekday, hour int) time.Time {
	days := (int(day) - int(now.Weekday()) + 7) % 7
	t := now.AddDate(0, 0, days)
	return time.Date(t.Year(), t.Month(), t.Day(), hour, 0, 0, 0, t.Location())
}

func virtualLink(description string) *string {
	for _, re := range virtualLinkPatterns {
		if m := re.FindStringSubmatch(description); m != nil {
			link := m[1]
			return &link
		}
	}
	return nil
}

func accessibilityNotes(description string) *string {
	if description == "" || !accessibilityKeywords.MatchString(description) {
		return nil
	}
	note := accessibilityNote
	return &note
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
