package app

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"article_spider/internal/config"
	"article_spider/internal/models"
)

type fakeStore struct {
	posts map[string]*models.Post
}

func newFakeStore() *fakeStore {
	return &fakeStore{posts: make(map[string]*models.Post)}
}

func (f *fakeStore) FindOrCreateBlog(siteURL, feedURL string) (*models.Blog, error) {
	return &models.Blog{ID: primitive.NewObjectID(), Name: "test", URL: siteURL, FeedURL: feedURL}, nil
}

func (f *fakeStore) InsertPost(post *models.Post) (string, error) {
	if _, exists := f.posts[post.URL]; exists {
		return "", nil
	}
	f.posts[post.URL] = post
	return primitive.NewObjectID().Hex(), nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Crawl.DelayMinMS = 0
	cfg.Crawl.DelayMaxMS = 0
	cfg.Crawl.ArticleDelayMS = 0
	cfg.Crawl.TimeoutSec = 5
	cfg.Extract.Strategy = "manual"
	return cfg
}

func articleBody(text string) string {
	return fmt.Sprintf(`<html><head><meta property="og:title" content="Test Story"></head>
<body><article><p>%s</p></article></body></html>`, text)
}

func newTestSite(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunAdmissionBoundary(t *testing.T) {
	// 50 trimmed characters pass the gate; 49 do not.
	pages := map[string]string{
		"/": `<html><body>
			<a href="/2024/03/15/alpha-long-article-slug">alpha</a>
			<a href="/2024/03/16/beta-long-article-slug">beta</a>
		</body></html>`,
		"/2024/03/15/alpha-long-article-slug": articleBody(strings.Repeat("a", 50)),
		"/2024/03/16/beta-long-article-slug":  articleBody(strings.Repeat("b", 49)),
	}
	server := newTestSite(t, pages)
	store := newFakeStore()

	inserted, skipped := New(testConfig(), store).Run([]models.Site{{SiteURL: server.URL + "/"}})

	assert.Equal(t, 1, inserted)
	assert.Equal(t, 1, skipped)

	post, ok := store.posts[server.URL+"/2024/03/15/alpha-long-article-slug"]
	require.True(t, ok)
	assert.Equal(t, "Test Story", post.Title)
	assert.Equal(t, strings.Repeat("a", 50), post.Content)
	assert.Contains(t, post.HTMLContent, strings.Repeat("a", 50))
	assert.Equal(t, []string{}, post.Tags)
	assert.False(t, post.Published.IsZero(), "missing publish date substituted with processing time")
	assert.Empty(t, post.Summary, "no summary without an LLM client")
}

func TestRunDuplicateCountsAsSkipped(t *testing.T) {
	pages := map[string]string{
		"/": `<html><body>
			<a href="/2024/03/15/alpha-long-article-slug">alpha</a>
		</body></html>`,
		"/2024/03/15/alpha-long-article-slug": articleBody(strings.Repeat("a", 80)),
	}
	server := newTestSite(t, pages)

	store := newFakeStore()
	articleURL := server.URL + "/2024/03/15/alpha-long-article-slug"
	store.posts[articleURL] = &models.Post{URL: articleURL}

	inserted, skipped := New(testConfig(), store).Run([]models.Site{{SiteURL: server.URL + "/"}})

	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, skipped)
}

func TestRunFetchFailureCountsAsSkipped(t *testing.T) {
	// The article link is discovered but its page 404s at extraction time.
	pages := map[string]string{
		"/": `<html><body><a href="/2024/03/15/gone-long-article-slug">gone</a></body></html>`,
	}
	server := newTestSite(t, pages)
	store := newFakeStore()

	inserted, skipped := New(testConfig(), store).Run([]models.Site{{SiteURL: server.URL + "/"}})

	assert.Equal(t, 0, inserted)
	assert.Equal(t, 1, skipped)
	assert.Empty(t, store.posts)
}

func TestRunHonorsPostBudget(t *testing.T) {
	pages := map[string]string{
		"/": `<html><body>
			<a href="/2024/03/15/alpha-long-article-slug">alpha</a>
			<a href="/2024/03/16/beta-long-article-slug">beta</a>
			<a href="/2024/03/17/gamma-long-article-slug">gamma</a>
		</body></html>`,
		"/2024/03/15/alpha-long-article-slug": articleBody(strings.Repeat("a", 80)),
		"/2024/03/16/beta-long-article-slug":  articleBody(strings.Repeat("b", 80)),
		"/2024/03/17/gamma-long-article-slug": articleBody(strings.Repeat("c", 80)),
	}
	server := newTestSite(t, pages)
	store := newFakeStore()

	cfg := testConfig()
	cfg.Crawl.MaxPosts = 2

	inserted, _ := New(cfg, store).Run([]models.Site{{SiteURL: server.URL + "/"}})

	assert.Equal(t, 2, inserted)
	assert.Len(t, store.posts, 2)
}

func TestRunContinuesAfterBrokenSite(t *testing.T) {
	pages := map[string]string{
		"/": `<html><body>
			<a href="/2024/03/15/alpha-long-article-slug">alpha</a>
		</body></html>`,
		"/2024/03/15/alpha-long-article-slug": articleBody(strings.Repeat("a", 80)),
	}
	server := newTestSite(t, pages)
	store := newFakeStore()

	sites := []models.Site{
		{SiteURL: "http://127.0.0.1:0/unreachable"},
		{SiteURL: server.URL + "/"},
	}

	inserted, _ := New(testConfig(), store).Run(sites)
	assert.Equal(t, 1, inserted)
}

func TestTextLen(t *testing.T) {
	assert.Equal(t, 0, textLen("   \n\t "))
	assert.Equal(t, 49, textLen(strings.Repeat("a", 49)))
	assert.Equal(t, 50, textLen("  "+strings.Repeat("a", 50)+"\n"))
	assert.Equal(t, 3, textLen("héé"))
}
