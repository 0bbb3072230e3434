package urlqueue

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// linkDenylist drops structural pages and raster images before they ever
// reach classification.
var linkDenylist = []string{
	"login", "signup", "privacy", "terms",
	"contact", "about", ".jpg", ".png", ".gif",
}

// ExtractLinks parses anchors from the page body and returns absolute,
// deduplicated, same-host URLs in document order. It never fetches.
func ExtractLinks(body, pageURL string) []string {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil
	}

	var links []string
	seen := make(map[string]bool)

	doc.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "mailto:") {
			return
		}

		parsed, err := url.Parse(href)
		if err != nil {
			return
		}
		resolved := base.ResolveReference(parsed).String()

		lower := strings.ToLower(resolved)
		for _, bad := range linkDenylist {
			if strings.Contains(lower, bad) {
				return
			}
		}

		if hostOf(resolved) != base.Host {
			return
		}

		if !seen[resolved] {
			seen[resolved] = true
			links = append(links, resolved)
		}
	})

	return links
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
