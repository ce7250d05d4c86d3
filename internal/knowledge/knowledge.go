// Package knowledge answers lookup queries from Wikipedia and DuckDuckGo.
// Both sources are free and keyless; transient failures are retried a small
// fixed number of times with backoff before the caller degrades to an
// apology reply.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/pbaille/nexis/internal/config"
)

// ErrUnavailable means every source failed or returned nothing usable.
var ErrUnavailable = errors.New("knowledge sources unavailable")

// Client is the knowledge lookup collaborator.
type Client struct {
	http         *resty.Client
	wikiURL      string
	ddgURL       string
	maxSentences int
	log          zerolog.Logger
}

// New creates a Client with bounded retry on transient HTTP failures.
func New(cfg *config.Config, log zerolog.Logger) *Client {
	rc := resty.New().
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == 429 || r.StatusCode() >= 500
		}).
		SetHeader("User-Agent", "nexis/1.0 (voice-assistant)")

	return &Client{
		http:         rc,
		wikiURL:      strings.TrimRight(cfg.WikipediaURL, "/"),
		ddgURL:       cfg.DuckDuckGoURL,
		maxSentences: cfg.AnswerMaxSentences,
		log:          log,
	}
}

// FindAnswer returns a short summary for query. Topic-style queries prefer
// Wikipedia with DuckDuckGo as fallback; general searches invert the order.
func (c *Client) FindAnswer(ctx context.Context, query string, preferWikipedia bool) (string, error) {
	first, second := c.wikipedia, c.duckduckgo
	if !preferWikipedia {
		first, second = c.duckduckgo, c.wikipedia
	}

	answer, err := first(ctx, query)
	if err == nil && answer != "" {
		return answer, nil
	}
	if err != nil {
		c.log.Debug().Err(err).Str("query", query).Msg("primary lookup failed")
	}

	answer, err = second(ctx, query)
	if err == nil && answer != "" {
		return answer, nil
	}
	if err != nil {
		c.log.Debug().Err(err).Str("query", query).Msg("fallback lookup failed")
	}

	return "", ErrUnavailable
}

type wikiSummary struct {
	Extract string `json:"extract"`
}

// wikipedia queries the REST summary endpoint for the query as a page title.
func (c *Client) wikipedia(ctx context.Context, query string) (string, error) {
	title := url.PathEscape(strings.ReplaceAll(strings.TrimSpace(query), " ", "_"))

	var out wikiSummary
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		Get(c.wikiURL + "/page/summary/" + title)
	if err != nil {
		return "", fmt.Errorf("wikipedia: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("wikipedia: HTTP %d", resp.StatusCode())
	}
	if out.Extract == "" {
		return "", nil
	}
	return trimSentences(out.Extract, c.maxSentences), nil
}

// duckduckgo scrapes DuckDuckGo Lite, which serves plain HTML result rows.
func (c *Client) duckduckgo(ctx context.Context, query string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"q": query}).
		Post(c.ddgURL)
	if err != nil {
		return "", fmt.Errorf("duckduckgo: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("duckduckgo: HTTP %d", resp.StatusCode())
	}

	snippets := extractSnippets(string(resp.Body()))
	if len(snippets) == 0 {
		return "", nil
	}
	return trimSentences(strings.Join(snippets[:min(2, len(snippets))], " "), c.maxSentences), nil
}

// extractSnippets parses the Lite results page and pulls result-snippet
// cells; when none carry the class it falls back to any long table cell.
func extractSnippets(page string) []string {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil
	}

	var snippets, fallback []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "td" {
			text := nodeText(n)
			if hasClass(n, "result-snippet") && text != "" {
				snippets = append(snippets, text)
			} else if len(text) > 60 {
				fallback = append(fallback, text)
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if len(snippets) > 0 {
		return snippets
	}
	return fallback
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

// trimSentences keeps the first max sentences of text.
func trimSentences(text string, max int) string {
	text = strings.TrimSpace(text)
	if max <= 0 {
		return text
	}

	count := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '.' && text[i] != '!' && text[i] != '?' {
			continue
		}
		if i+1 == len(text) || text[i+1] == ' ' {
			count++
			if count == max {
				return strings.TrimSpace(text[:i+1])
			}
		}
	}
	return text
}
