// Package app sequences a crawl: discovery, then per-article fetch,
// extraction, metadata and admission gates, handing finished records to the
// store. Sites run strictly sequentially with one in-flight request each.
package app

import (
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"article_spider/internal/classify"
	"article_spider/internal/config"
	"article_spider/internal/extract"
	"article_spider/internal/fetch"
	"article_spider/internal/meta"
	"article_spider/internal/models"
	urlqueue "article_spider/internal/url_queue"
)

// PostStore is the persistence collaborator. It must itself be idempotent
// for repeated canonical URLs: InsertPost returns an empty id, not an error,
// when the URL already exists for the blog.
type PostStore interface {
	FindOrCreateBlog(siteURL, feedURL string) (*models.Blog, error)
	InsertPost(post *models.Post) (string, error)
}

type App struct {
	cfg        *config.Config
	store      PostStore
	fetcher    *fetch.Fetcher
	pipeline   *extract.Pipeline
	classifier *classify.Classifier
}

func New(cfg *config.Config, store PostStore) *App {
	var llm *extract.Client
	if cfg.LLM.APIURL != "" {
		llm = extract.NewClient(
			cfg.LLM.APIURL,
			cfg.LLM.Model,
			cfg.LLM.APIKey,
			cfg.LLM.MaxTokens,
			time.Duration(cfg.LLM.TimeoutSec)*time.Second,
		)
	}

	pipeCfg := extract.DefaultConfig()
	pipeCfg.Strategy = extract.Strategy(cfg.Extract.Strategy)
	pipeCfg.ChunkSize = cfg.Extract.ChunkSize

	return &App{
		cfg:        cfg,
		store:      store,
		fetcher:    fetch.New(time.Duration(cfg.Crawl.TimeoutSec)*time.Second, cfg.Crawl.UserAgent),
		pipeline:   extract.New(pipeCfg, llm),
		classifier: classify.New(),
	}
}

// Run crawls each site in order and reports aggregate inserted/skipped
// counts. A failure on one site never stops the remaining sites.
func (a *App) Run(sites []models.Site) (inserted, skipped int) {
	for _, site := range sites {
		ins, skip := a.runSite(site)
		inserted += ins
		skipped += skip
		log.Printf("[crawl] site %s done: inserted=%d skipped=%d", site.SiteURL, ins, skip)
	}
	log.Printf("[crawl] finished: inserted=%d skipped=%d", inserted, skipped)
	return inserted, skipped
}

func (a *App) runSite(site models.Site) (inserted, skipped int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[crawl] site %s aborted: %v", site.SiteURL, r)
		}
	}()

	blog, err := a.store.FindOrCreateBlog(site.SiteURL, site.RSSURL)
	if err != nil {
		log.Printf("[crawl] blog lookup failed for %s: %v", site.SiteURL, err)
		return 0, 0
	}

	return a.crawlSite(blog, site.SiteURL)
}

func (a *App) crawlSite(blog *models.Blog, siteURL string) (inserted, skipped int) {
	log.Printf("[crawl] crawling site %s", siteURL)

	frontier := urlqueue.NewFrontier(urlqueue.FrontierConfig{
		MaxPages:      a.cfg.Crawl.MaxPages,
		MaxArticles:   a.cfg.Crawl.MaxArticles,
		DelayMin:      time.Duration(a.cfg.Crawl.DelayMinMS) * time.Millisecond,
		DelayMax:      time.Duration(a.cfg.Crawl.DelayMaxMS) * time.Millisecond,
		RespectRobots: a.cfg.Crawl.RespectRobots,
		UserAgent:     a.cfg.Crawl.UserAgent,
	}, a.classifier, a.fetcher)

	articleURLs := frontier.Discover(siteURL)
	log.Printf("[crawl] identified %d article URLs", len(articleURLs))

	for _, articleURL := range articleURLs {
		if inserted >= a.cfg.Crawl.MaxPosts {
			log.Printf("[crawl] hard stop: inserted %d posts", inserted)
			break
		}

		res := a.fetcher.Get(articleURL)
		if !res.OK {
			log.Printf("[crawl] skip %s: fetch failed: %v", articleURL, res.Err)
			skipped++
			continue
		}

		rawText := a.pipeline.BasicStrip(res.Body)
		if textLen(rawText) < a.cfg.Extract.MinTextLen {
			log.Printf("[crawl] skip %s: raw content too short (%d chars)", articleURL, textLen(rawText))
			skipped++
			continue
		}

		md := meta.Extract(res.Body)
		published := md.Published
		if !md.HasPublished {
			// Documented approximation: processing time stands in for an
			// unknown publish date.
			published = time.Now().UTC()
		}

		cleaned := a.pipeline.CleanText(res.Body, articleURL)
		if textLen(cleaned) < a.cfg.Extract.MinTextLen {
			log.Printf("[crawl] skip %s: cleaned content too short (%d chars)", articleURL, textLen(cleaned))
			skipped++
			continue
		}

		post := &models.Post{
			BlogID:        blog.ID,
			URL:           articleURL,
			Title:         md.Title,
			Content:       cleaned,
			HTMLContent:   a.pipeline.ArticleHTML(res.Body),
			Author:        md.Author,
			Tags:          []string{},
			Published:     published,
			Summary:       a.pipeline.Summary(cleaned),
			ContentLength: len(cleaned),
			ScrapedAt:     time.Now().UTC(),
		}

		id, err := a.store.InsertPost(post)
		if err != nil {
			log.Printf("[crawl] skip %s: insert failed: %v", articleURL, err)
			skipped++
			continue
		}
		if id == "" {
			log.Printf("[crawl] skip %s: already stored", articleURL)
			skipped++
			continue
		}

		log.Printf("[crawl] inserted post %s (%s)", id, articleURL)
		inserted++

		time.Sleep(time.Duration(a.cfg.Crawl.ArticleDelayMS) * time.Millisecond)
	}

	return inserted, skipped
}

// textLen is the admission-gate measure: rune count of the trimmed text.
func textLen(s string) int {
	return utf8.RuneCountInString(strings.TrimSpace(s))
}
