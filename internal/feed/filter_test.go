package feed

import (
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
)

func pagePosts() []*models.Post {
	return []*models.Post{
		{ID: 1, Title: "Go Concurrency Patterns", Hashtags: []string{"golang", "concurrency"}, User: models.User{Username: "alice"}},
		{ID: 2, Title: "Baking Sourdough", Hashtags: []string{"baking", "food"}, User: models.User{Username: "bob"}},
		{ID: 3, Title: "Concurrency in Databases", Hashtags: []string{"databases"}, User: models.User{Username: "alice"}},
		{ID: 4, Title: "Weekend Hikes", Hashtags: []string{"Outdoors"}, User: models.User{Username: "carol"}},
	}
}

func TestFilter_Title(t *testing.T) {
	posts := pagePosts()

	got := Filter(posts, ModeTitle, "concurrency")
	assert.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].ID)
	assert.Equal(t, uint(3), got[1].ID)

	// Case-insensitive substring
	got = Filter(posts, ModeTitle, "SOUR")
	assert.Len(t, got, 1)
	assert.Equal(t, uint(2), got[0].ID)
}

func TestFilter_EmptyTermMatchesAll(t *testing.T) {
	posts := pagePosts()
	assert.Equal(t, posts, Filter(posts, ModeTitle, ""))
	assert.Equal(t, posts, Filter(posts, ModeUsername, "   "))
}

func TestFilter_UsernameExactMatch(t *testing.T) {
	posts := pagePosts()

	got := Filter(posts, ModeUsername, "alice")
	assert.Len(t, got, 2)

	// Substring of a username is not a match in username mode.
	got = Filter(posts, ModeUsername, "ali")
	assert.Empty(t, got)

	got = Filter(posts, ModeUsername, "ALICE")
	assert.Len(t, got, 2)
}

func TestFilter_Hashtag(t *testing.T) {
	posts := pagePosts()

	got := Filter(posts, ModeHashtag, "golang")
	assert.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].ID)

	// Substring and case-insensitive against any tag.
	got = Filter(posts, ModeHashtag, "outdoor")
	assert.Len(t, got, 1)
	assert.Equal(t, uint(4), got[0].ID)

	got = Filter(posts, ModeHashtag, "missing")
	assert.Empty(t, got)
}

func TestFilter_NoMatchesReturnsEmpty(t *testing.T) {
	got := Filter(pagePosts(), ModeTitle, "zzz-not-there")
	assert.Empty(t, got)
}

func TestValidMode(t *testing.T) {
	assert.True(t, ValidMode(ModeTitle))
	assert.True(t, ValidMode(ModeUsername))
	assert.True(t, ValidMode(ModeHashtag))
	assert.False(t, ValidMode(Mode("content")))
}

func TestSuggest(t *testing.T) {
	usernames := []string{"alice", "albert", "ALVIN", "alfred", "alina", "alexa", "bob"}

	t.Run("Prefix match capped at five", func(t *testing.T) {
		got := Suggest(usernames, "al")
		assert.Len(t, got, MaxSuggestions)
		assert.Equal(t, []string{"alice", "albert", "ALVIN", "alfred", "alina"}, got)
	})

	t.Run("Case-insensitive prefix", func(t *testing.T) {
		got := Suggest(usernames, "AL")
		assert.Len(t, got, MaxSuggestions)
	})

	t.Run("Empty prefix yields nothing", func(t *testing.T) {
		assert.Empty(t, Suggest(usernames, ""))
		assert.Empty(t, Suggest(usernames, "  "))
	})

	t.Run("Duplicates collapse", func(t *testing.T) {
		got := Suggest([]string{"dana", "Dana", "dana"}, "da")
		assert.Equal(t, []string{"dana"}, got)
	})

	t.Run("No match", func(t *testing.T) {
		assert.Empty(t, Suggest(usernames, "zed"))
	})

	t.Run("Mixed-case author set", func(t *testing.T) {
		got := Suggest([]string{"Alice", "Alicia", "Bob"}, "ali")
		assert.Equal(t, []string{"Alice", "Alicia"}, got)
	})
}
