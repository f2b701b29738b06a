package coc

import (
	"regexp"
	"strings"
)

// Tags use the in-game alphabet; anything else is rejected before we
// spend an API call on it.
var tagPattern = regexp.MustCompile(`^#[0289PYLQGRJCUV]{3,12}$`)

var tagCandidate = regexp.MustCompile(`#?[0289PYLQGRJCUVoO]{3,12}`)

// NormalizeTag upper-cases, prepends '#' and maps the letter O to the
// digit 0 the way the game client does.
func NormalizeTag(raw string) string {
	tag := strings.ToUpper(strings.TrimSpace(raw))
	tag = strings.ReplaceAll(tag, "O", "0")
	if !strings.HasPrefix(tag, "#") {
		tag = "#" + tag
	}
	return tag
}

// ValidTag reports whether a normalized tag is well-formed.
func ValidTag(tag string) bool {
	return tagPattern.MatchString(tag)
}

// ExtractTags pulls every well-formed tag out of free text, normalized
// and deduplicated in order of appearance.
func ExtractTags(text string) []string {
	var tags []string
	seen := make(map[string]struct{})
	for _, candidate := range tagCandidate.FindAllString(strings.ToUpper(text), -1) {
		tag := NormalizeTag(candidate)
		if !ValidTag(tag) {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
