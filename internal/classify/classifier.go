// Package classify labels candidate URLs during discovery. Classification is
// a pure function of the URL string and the fixed rule set: the same URL
// always gets the same label.
package classify

import (
	"regexp"
	"strings"
)

type Label int

const (
	Undetermined Label = iota
	Excluded
	Section
	Article
)

func (l Label) String() string {
	switch l {
	case Excluded:
		return "excluded"
	case Section:
		return "section"
	case Article:
		return "article"
	default:
		return "undetermined"
	}
}

// Hard exclusions: never fetched, never enqueued. Share links, dimensioned
// thumbnails, comment anchors, pagination and author listings waste requests
// and can never be articles.
var defaultHardExclude = []string{
	`\?share=`,
	`[&#]share=`,
	`/\d+-\d+x\d+/`,
	`\d+x\d+\.(jpg|jpeg|png|gif|webp)`,
	`#respond`,
	`#comment`,
	`/page/\d+`,
	`/author/`,
	`/writers?/`,
}

// Soft exclusions: section/category/archive roots. Visited for discovery but
// never promoted to article.
var defaultSection = []string{
	`/category/?$`,
	`/categories/?$`,
	`/tag/?$`,
	`/tags/?$`,
	`/topics?/?$`,
	`/archive/?$`,
	`/archives/?$`,
	`/\d{4}/?$`,
	`/\d{4}/\d{2}/?$`,
	`/hub/?$`,
	`/all-articles/?$`,
	`/news/?$`,
	`/world-news/?$`,
	`/politics/?$`,
	`/opinion/?$`,
	`/sports/?$`,
	`/tech/?$`,
	`/business/?$`,
	`/story/?$`,
}

// Final path segments that look like long slugs but are really categories.
var categoryWords = map[string]bool{
	"news": true, "politics": true, "world": true, "business": true,
	"sports": true, "tech": true, "technology": true, "science": true,
	"opinion": true, "entertainment": true, "lifestyle": true, "health": true,
	"culture": true, "economy": true, "society": true,
}

var (
	reNewsDated = regexp.MustCompile(`/(news|story)/20\d{2}/\d{2}/\d{2}/[\w-]+`)
	reFullDate  = regexp.MustCompile(`/20\d{2}/\d{2}/\d{2}/[\w-]+`)
	reWordPress = regexp.MustCompile(`/20\d{2}/\d{2}/[\w-]{10,}`)
	reLongSlug  = regexp.MustCompile(`/[\w-]{20,}/?$`)
)

// articleRule is one entry in the ordered article-shape cascade; the first
// matching rule wins.
type articleRule struct {
	name  string
	match func(url string) bool
}

var defaultArticleRules = []articleRule{
	{"article-segment", func(u string) bool {
		return strings.Contains(u, "/article/")
	}},
	{"news-full-date", reNewsDated.MatchString},
	{"full-date-path", reFullDate.MatchString},
	{"wordpress-date", func(u string) bool {
		return reWordPress.MatchString(u) && !strings.HasSuffix(u, "/")
	}},
	{"long-slug", func(u string) bool {
		if !reLongSlug.MatchString(u) {
			return false
		}
		trimmed := strings.TrimRight(u, "/")
		slug := trimmed[strings.LastIndex(trimmed, "/")+1:]
		return !categoryWords[strings.ToLower(slug)]
	}},
}

type Classifier struct {
	hardExclude []*regexp.Regexp
	section     []*regexp.Regexp
	article     []articleRule
}

func New() *Classifier {
	return &Classifier{
		hardExclude: compile(defaultHardExclude),
		section:     compile(defaultSection),
		article:     defaultArticleRules,
	}
}

func compile(patterns []string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		res = append(res, regexp.MustCompile(`(?i)`+p))
	}
	return res
}

// Classify evaluates the two-stage exclusion policy, then the article
// cascade. Order matters: a URL matching both a hard pattern and an article
// shape is still excluded.
func (c *Classifier) Classify(url string) Label {
	for _, re := range c.hardExclude {
		if re.MatchString(url) {
			return Excluded
		}
	}
	for _, re := range c.section {
		if re.MatchString(url) {
			return Section
		}
	}
	for _, rule := range c.article {
		if rule.match(url) {
			return Article
		}
	}
	return Undetermined
}
