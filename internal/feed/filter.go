// Package feed implements client-facing feed search: term filtering over a
// page of posts and the debounced username typeahead.
package feed

import (
	"strings"

	"inkwell/internal/models"
)

// Mode selects which post attribute a search term is matched against.
type Mode string

const (
	ModeTitle    Mode = "title"
	ModeUsername Mode = "username"
	ModeHashtag  Mode = "hashtag"
)

// ValidMode reports whether m is a recognized search mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModeTitle, ModeUsername, ModeHashtag:
		return true
	}
	return false
}

// Filter returns the posts matching term under the given mode. An empty term
// matches everything. Title and hashtag matching is case-insensitive
// substring; username matching is an exact (case-insensitive) match against
// the author, since terms arrive from the typeahead selection.
func Filter(posts []*models.Post, mode Mode, term string) []*models.Post {
	term = strings.TrimSpace(term)
	if term == "" {
		return posts
	}

	needle := strings.ToLower(term)
	matched := make([]*models.Post, 0, len(posts))
	for _, p := range posts {
		if matches(p, mode, needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

func matches(p *models.Post, mode Mode, needle string) bool {
	switch mode {
	case ModeUsername:
		return strings.ToLower(p.User.Username) == needle
	case ModeHashtag:
		for _, tag := range p.Hashtags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		return false
	default:
		return strings.Contains(strings.ToLower(p.Title), needle)
	}
}

// MaxSuggestions caps the typeahead dropdown size.
const MaxSuggestions = 5

// Suggest returns up to MaxSuggestions unique usernames with the given
// prefix, preserving input order. An empty prefix yields no suggestions.
func Suggest(usernames []string, prefix string) []string {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, name := range usernames {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		if _, dup := seen[lower]; dup {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, name)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}
