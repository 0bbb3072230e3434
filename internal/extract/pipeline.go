// Package extract turns raw article HTML into clean text through an ordered
// fallback of strategies. The pipeline never returns an error: an empty
// string is the sole signal of total failure.
package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

type Strategy string

const (
	StrategyLLM         Strategy = "llm"
	StrategyManual      Strategy = "manual"
	StrategyReadability Strategy = "readability"
)

// DefaultJunkSelectors lists structural and junk elements removed before any
// content extraction. Extend here when a site leaks new boilerplate.
var DefaultJunkSelectors = []string{
	"head", "script", "style", "nav", "header", "footer",
	"iframe", "noscript", "svg", "link", "meta",

	// images and media, to keep alt text and captions out of content
	"img", "picture", "figure", "figcaption",

	"button", "form", "input", "textarea",

	".header", ".footer", ".sidebar", ".nav", ".menu",
	".advertisement", ".ad", ".ads", ".sponsor",
	".share", ".social", ".comments", ".related",

	"#header", "#footer", "#sidebar", "#nav",

	"[id*='google']", "[class*='google']",
	"[class*='share']", "[class*='social']",
	"[class*='comment']", "[class*='related']",
	"[class*='ad-']", "[id*='ad-']",
	"[class*='newsletter']", "[class*='subscribe']",
}

// DefaultContainerSelectors is tried in order of preference; the first
// non-empty match wins.
var DefaultContainerSelectors = []string{
	"article",
	"[class*='article-content']",
	"[class*='post-content']",
	"[class*='entry-content']",
	"[class*='story-content']",
	"[id*='article-content']",
	"[id*='post-content']",
	".article-body",
	".post-body",
	"main",
	"[role='main']",
	"#main-content",
	".content",
}

// boilerplatePhrases marks text nodes as navigation/footer/ad junk when any
// of them appears in the lowercased text.
var boilerplatePhrases = []string{
	"click to share", "share on", "tweet", "share this",
	"subscribe", "newsletter", "follow us", "sign up",
	"read more", "continue reading", "related:", "tags:",
	"posted in", "filed under", "advertisement", "sponsored",
	"comment", "leave a comment", "view all posts",
	"copyright", "all rights reserved",
	"privacy policy", "terms of use", "cookie policy",
}

var (
	reHead    = regexp.MustCompile(`(?i)<head[\s\S]*?</head>`)
	reScript  = regexp.MustCompile(`(?i)<script[\s\S]*?</script>`)
	reStyle   = regexp.MustCompile(`(?i)<style[\s\S]*?</style>`)
	reImg     = regexp.MustCompile(`(?i)<img[\s\S]*?>`)
	reComment = regexp.MustCompile(`(?s)<!--.*?-->`)
	reTag     = regexp.MustCompile(`<[^>]+>`)
	reSpaces  = regexp.MustCompile(`\s+`)
	reInline  = regexp.MustCompile(`[ \t]+`)
	reBlank   = regexp.MustCompile(`\n[ \t]*(?:\n[ \t]*)+`)
)

// Config carries the fixed knobs of the pipeline so tests and callers can
// override them without touching logic.
type Config struct {
	Strategy           Strategy
	JunkSelectors      []string
	ContainerSelectors []string
	ChunkSize          int
	MinPartLen         int
	BasicMinLen        int
}

func DefaultConfig() Config {
	return Config{
		Strategy:           StrategyLLM,
		JunkSelectors:      DefaultJunkSelectors,
		ContainerSelectors: DefaultContainerSelectors,
		ChunkSize:          8000,
		MinPartLen:         3,
		BasicMinLen:        10,
	}
}

type Pipeline struct {
	cfg Config
	llm *Client
}

// New builds a pipeline. llm may be nil, in which case the LLM strategy
// degrades to the basic fallback and summaries are skipped.
func New(cfg Config, llm *Client) *Pipeline {
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 8000
	}
	if len(cfg.JunkSelectors) == 0 {
		cfg.JunkSelectors = DefaultJunkSelectors
	}
	if len(cfg.ContainerSelectors) == 0 {
		cfg.ContainerSelectors = DefaultContainerSelectors
	}
	if cfg.MinPartLen <= 0 {
		cfg.MinPartLen = 3
	}
	if cfg.BasicMinLen <= 0 {
		cfg.BasicMinLen = 10
	}
	return &Pipeline{cfg: cfg, llm: llm}
}

// CleanText runs the configured strategy over the raw page HTML.
func (p *Pipeline) CleanText(rawHTML, pageURL string) string {
	if strings.TrimSpace(rawHTML) == "" {
		return ""
	}
	switch p.cfg.Strategy {
	case StrategyManual:
		return p.manualClean(rawHTML)
	case StrategyReadability:
		return p.readabilityClean(rawHTML, pageURL)
	default:
		return p.llmClean(rawHTML)
	}
}

// ArticleHTML locates the content container: junk stripped, then the first
// matching container selector, then body, then the raw input untouched.
func (p *Pipeline) ArticleHTML(rawHTML string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return rawHTML
	}

	for _, sel := range p.cfg.JunkSelectors {
		doc.Find(sel).Remove()
	}

	for _, sel := range p.cfg.ContainerSelectors {
		node := doc.Find(sel).First()
		if node.Length() > 0 && strings.TrimSpace(node.Text()) != "" {
			if h, err := goquery.OuterHtml(node); err == nil {
				return stripNoise(h)
			}
		}
	}

	body := doc.Find("body").First()
	if body.Length() > 0 {
		if h, err := goquery.OuterHtml(body); err == nil {
			return stripNoise(h)
		}
	}

	return rawHTML
}

// manualClean walks content-bearing elements of the container in document
// order, filtering short fragments, boilerplate phrases and bare links.
func (p *Pipeline) manualClean(rawHTML string) string {
	container := p.ArticleHTML(rawHTML)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(container))
	if err != nil {
		return p.BasicStrip(rawHTML)
	}

	var parts []string

	if title := collapse(doc.Find("h1").First().Text()); title != "" {
		parts = append(parts, title)
	}

	doc.Find("p, h2, h3, h4, li, blockquote").Each(func(_ int, s *goquery.Selection) {
		text := collapse(s.Text())
		if utf8.RuneCountInString(text) < p.cfg.MinPartLen {
			return
		}
		lower := strings.ToLower(text)
		for _, phrase := range boilerplatePhrases {
			if strings.Contains(lower, phrase) {
				return
			}
		}
		if strings.HasPrefix(text, "http") || strings.HasPrefix(text, "www") {
			return
		}
		parts = append(parts, text)
	})

	return capBlankLines(strings.Join(parts, "\n\n"))
}

// readabilityClean delegates to go-readability, with block tags padded first
// so adjacent cells and list items do not glue together in the text view.
func (p *Pipeline) readabilityClean(rawHTML, pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return p.BasicStrip(rawHTML)
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsed)
	if err != nil {
		return p.BasicStrip(rawHTML)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(padBlockTags(article.Content)))
	if err != nil {
		return p.BasicStrip(rawHTML)
	}

	return collapse(doc.Text())
}

// BasicStrip is the lowest-level fallback: drop head/script/style/images and
// comments, then keep text of a minimal tag set above a length threshold.
// Also used by callers to gate the raw fetched page before extraction.
func (p *Pipeline) BasicStrip(rawHTML string) string {
	cleaned := reHead.ReplaceAllString(rawHTML, "")
	cleaned = reScript.ReplaceAllString(cleaned, "")
	cleaned = reStyle.ReplaceAllString(cleaned, "")
	cleaned = reImg.ReplaceAllString(cleaned, "")
	cleaned = reComment.ReplaceAllString(cleaned, "")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(cleaned))
	if err != nil {
		return ""
	}

	var parts []string
	doc.Find("p, li, h1, h2, h3, h4").Each(func(_ int, s *goquery.Selection) {
		text := collapse(s.Text())
		if utf8.RuneCountInString(text) > p.cfg.BasicMinLen {
			parts = append(parts, text)
		}
	})

	return strings.Join(parts, "\n\n")
}

var blockTags = []*regexp.Regexp{
	regexp.MustCompile(`<(?:div|p|br|li|td|tr|h[1-6])[^>]*>`),
	regexp.MustCompile(`</(?:div|p|li|td|tr|h[1-6])>`),
}

func padBlockTags(html string) string {
	result := blockTags[0].ReplaceAllString(html, " $0")
	return blockTags[1].ReplaceAllString(result, "$0 ")
}

func stripNoise(html string) string {
	html = reScript.ReplaceAllString(html, "")
	html = reStyle.ReplaceAllString(html, "")
	html = reComment.ReplaceAllString(html, "")
	return strings.TrimSpace(html)
}

// collapse flattens all whitespace runs to single spaces and trims.
func collapse(s string) string {
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

// normalizeBlock collapses intra-line whitespace and caps blank-line runs at
// one, preserving paragraph structure.
func normalizeBlock(s string) string {
	s = reInline.ReplaceAllString(s, " ")
	return capBlankLines(s)
}

func capBlankLines(s string) string {
	return strings.TrimSpace(reBlank.ReplaceAllString(s, "\n\n"))
}
