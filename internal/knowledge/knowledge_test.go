package knowledge

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pbaille/nexis/internal/config"
)

func testClient(wikiURL, ddgURL string) *Client {
	return New(&config.Config{
		WikipediaURL:       wikiURL,
		DuckDuckGoURL:      ddgURL,
		AnswerMaxSentences: 2,
	}, zerolog.Nop())
}

func TestFindAnswerPrefersWikipedia(t *testing.T) {
	wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/page/summary/black_hole", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"extract":"A black hole is a region of spacetime. Nothing can escape it. Not even light."}`))
	}))
	defer wiki.Close()

	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("duckduckgo should not be called when wikipedia answers")
	}))
	defer ddg.Close()

	c := testClient(wiki.URL, ddg.URL)

	answer, err := c.FindAnswer(context.Background(), "black hole", true)
	require.NoError(t, err)
	assert.Equal(t, "A black hole is a region of spacetime. Nothing can escape it.", answer)
}

func TestFindAnswerFallsBackToDuckDuckGo(t *testing.T) {
	wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer wiki.Close()

	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "go tutorials", r.FormValue("q"))
		_, _ = w.Write([]byte(`<html><body><table>
			<tr><td class="result-snippet">Go is a statically typed language.</td></tr>
		</table></body></html>`))
	}))
	defer ddg.Close()

	c := testClient(wiki.URL, ddg.URL)

	answer, err := c.FindAnswer(context.Background(), "go tutorials", true)
	require.NoError(t, err)
	assert.Equal(t, "Go is a statically typed language.", answer)
}

func TestFindAnswerRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	wiki := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"extract":"Jupiter is the largest planet."}`))
	}))
	defer wiki.Close()

	ddg := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ddg.Close()

	c := testClient(wiki.URL, ddg.URL)

	answer, err := c.FindAnswer(context.Background(), "jupiter", true)
	require.NoError(t, err)
	assert.Equal(t, "Jupiter is the largest planet.", answer)
	assert.Equal(t, int32(2), calls.Load())
}

func TestFindAnswerAllSourcesDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	c := testClient(down.URL, down.URL)

	_, err := c.FindAnswer(context.Background(), "anything", false)
	assert.True(t, errors.Is(err, ErrUnavailable))
}

func TestTrimSentences(t *testing.T) {
	assert.Equal(t, "One. Two.", trimSentences("One. Two. Three.", 2))
	assert.Equal(t, "Just one", trimSentences("Just one", 3))
	assert.Equal(t, "Version 1.5 works. Yes.", trimSentences("Version 1.5 works. Yes. More.", 2))
}
