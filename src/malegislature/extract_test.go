package malegislature

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractHearingIDs(t *testing.T) {
	html := `
		<a href="/Events/Hearings/Detail/101">Hearing</a>
		<a href="/Events/Hearings/Detail/102">Another hearing</a>
		<a href="/Events/Hearings/Detail/101">Duplicate link</a>
	`
	ids := ExtractHearingIDs(html)
	assert.ElementsMatch(t, []string{"101", "102"}, ids)
}

func TestExtractHearingIDsMultiplePatterns(t *testing.T) {
	html := `
		<a href="/Events/Hearings/Detail/200">detail link</a>
		<a href="https://malegislature.gov/Hearings/201">bare path</a>
		<span data-ref="hearing_id=202">scheduled hearing</span>
		<span>id:203 joint hearing</span>
	`
	ids := ExtractHearingIDs(html)
	assert.ElementsMatch(t, []string{"200", "201", "202", "203"}, ids)
}

func TestExtractHearingIDsEmpty(t *testing.T) {
	assert.Empty(t, ExtractHearingIDs("<html><body>No events scheduled</body></html>"))
	assert.Empty(t, ExtractHearingIDs(""))
}

func TestFallbackHearingIDsDistinct(t *testing.T) {
	ids := FallbackHearingIDs()
	assert.NotEmpty(t, ids)

	seen := make(map[string]struct{})
	for _, id := range ids {
		_, dup := seen[id]
		assert.False(t, dup, "fallback id %s repeated", id)
		seen[id] = struct{}{}
	}
}
