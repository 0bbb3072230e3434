// Package meta resolves title, author and publish date from the ranked
// signal sources a page may or may not carry. Each resolver tries its
// sources in priority order and stops at the first usable result.
package meta

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

const untitled = "Untitled"

// Metadata is what could be resolved from the page. HasPublished
// distinguishes a real timestamp from an absent one; substituting the
// processing time for missing dates is the caller's policy, not ours.
type Metadata struct {
	Title        string
	Author       string
	Published    time.Time
	HasPublished bool
}

func Extract(rawHTML string) Metadata {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return Metadata{Title: untitled}
	}

	md := Metadata{
		Title:  resolveTitle(doc),
		Author: resolveAuthor(doc),
	}
	md.Published, md.HasPublished = resolvePublished(doc)
	return md
}

// resolveTitle: open-graph tag, then first heading, then a placeholder.
func resolveTitle(doc *goquery.Document) string {
	if og, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
		if title := strings.TrimSpace(og); title != "" {
			return title
		}
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return untitled
}

// resolveAuthor: JSON-LD author field (object or list of objects,
// comma-joined), then the author meta tag, then a byline element with any
// leading "By " stripped.
func resolveAuthor(doc *goquery.Document) string {
	var author string

	doc.Find("script[type='application/ld+json']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var data struct {
			Author json.RawMessage `json:"author"`
		}
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil || len(data.Author) == 0 {
			return true
		}
		if name := authorNames(data.Author); name != "" {
			author = name
			return false
		}
		return true
	})
	if author != "" {
		return author
	}

	if content, ok := doc.Find("meta[name='author']").First().Attr("content"); ok {
		if name := strings.TrimSpace(content); name != "" {
			return name
		}
	}

	byline := strings.TrimSpace(doc.Find(".byline, .author, .post-author").First().Text())
	return strings.TrimPrefix(byline, "By ")
}

type ldPerson struct {
	Name string `json:"name"`
}

func authorNames(raw json.RawMessage) string {
	var one ldPerson
	if err := json.Unmarshal(raw, &one); err == nil && one.Name != "" {
		return one.Name
	}

	var many []ldPerson
	if err := json.Unmarshal(raw, &many); err == nil {
		var names []string
		for _, p := range many {
			if p.Name != "" {
				names = append(names, p.Name)
			}
		}
		return strings.Join(names, ", ")
	}

	return ""
}

// resolvePublished parses the published-time meta tag, first strictly as
// RFC 3339, then leniently. Absent or unparseable dates report ok=false.
func resolvePublished(doc *goquery.Document) (time.Time, bool) {
	content, ok := doc.Find("meta[property='article:published_time']").First().Attr("content")
	if !ok {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(content)
	if raw == "" {
		return time.Time{}, false
	}

	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if t, err := dateparse.ParseAny(raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}
