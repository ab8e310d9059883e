package suggest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Generate_Success(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/suggestions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(Suggestions{
			Titles:   []string{"A Walk in the Woods", "Forest Notes"},
			Hashtags: []string{"#hiking", "outdoors", ""},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	result := client.Generate(context.Background(), "today I hiked")

	assert.Equal(t, "Bearer test-key", gotAuth)
	assert.Equal(t, "today I hiked", gotBody["content"])
	assert.Equal(t, []string{"A Walk in the Woods", "Forest Notes"}, result.Titles)
	// Leading '#' and blanks are cleaned out.
	assert.Equal(t, []string{"hiking", "outdoors"}, result.Hashtags)
}

func TestClient_Generate_CapsListsAtFive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(Suggestions{
			Titles:   []string{"a", "b", "c", "d", "e", "f", "g"},
			Hashtags: []string{"one"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	result := client.Generate(context.Background(), "draft")
	assert.Len(t, result.Titles, 5)
}

func TestClient_Generate_TruncatesLongContent(t *testing.T) {
	var sentLen int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sentLen = len(body["content"].(string))
		json.NewEncoder(w).Encode(Suggestions{Titles: []string{"t"}})
	}))
	defer srv.Close()

	long := make([]byte, maxContentChars*2)
	for i := range long {
		long[i] = 'x'
	}

	client := NewClient(srv.URL, "test-key")
	client.Generate(context.Background(), string(long))
	assert.Equal(t, maxContentChars, sentLen)
}

func TestClient_Generate_TruncatesOnRuneBoundary(t *testing.T) {
	var sent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		sent = body["content"].(string)
		json.NewEncoder(w).Encode(Suggestions{Titles: []string{"t"}})
	}))
	defer srv.Close()

	// Three-byte runes guarantee the byte cap falls mid-character.
	long := strings.Repeat("日", maxContentChars)

	client := NewClient(srv.URL, "test-key")
	client.Generate(context.Background(), long)
	assert.True(t, utf8.ValidString(sent))
	assert.LessOrEqual(t, len(sent), maxContentChars)
	assert.NotEmpty(t, sent)
}

func TestClient_Generate_FallsBack(t *testing.T) {
	t.Run("unconfigured", func(t *testing.T) {
		client := NewClient("", "")
		result := client.Generate(context.Background(), "draft")
		assert.Equal(t, Fallback(), result)
	})

	t.Run("upstream error status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		result := client.Generate(context.Background(), "draft")
		assert.Equal(t, Fallback(), result)
	})

	t.Run("malformed response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		result := client.Generate(context.Background(), "draft")
		assert.Equal(t, Fallback(), result)
	})

	t.Run("empty suggestion lists", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			json.NewEncoder(w).Encode(Suggestions{})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")
		result := client.Generate(context.Background(), "draft")
		assert.Equal(t, Fallback(), result)
	})

	t.Run("unreachable upstream", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "test-key")
		result := client.Generate(context.Background(), "draft")
		assert.Equal(t, Fallback(), result)
	})
}

func TestFallback_ReturnsCopy(t *testing.T) {
	a := Fallback()
	a.Titles[0] = "mutated"
	b := Fallback()
	assert.NotEqual(t, "mutated", b.Titles[0])
}
