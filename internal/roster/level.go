package roster

import (
	"regexp"
	"strconv"
	"strings"
)

var levelDigits = regexp.MustCompile(`\d+`)

// ParseLevel derives a numeric level from the free-text stylist level field.
// "Level 3", "L2 Senior", "3" all parse; anything without a digit is level 0
// and sorts last.
func ParseLevel(level string) int {
	match := levelDigits.FindString(level)
	if match == "" {
		return 0
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return n
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// LevelSlug normalizes a free-text level into the slug keying
// service_level_prices rows ("Level 3" -> "level-3"). Empty input yields an
// empty slug, which callers treat as "no level pricing".
func LevelSlug(level string) string {
	slug := strings.ToLower(strings.TrimSpace(level))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
