package urlqueue

import (
	"fmt"
	"log"
	"math/rand"
	"net/url"
	"time"

	"github.com/temoto/robotstxt"

	"article_spider/internal/classify"
	"article_spider/internal/fetch"
)

// FrontierConfig is the immutable per-run discovery budget and pacing policy.
type FrontierConfig struct {
	MaxPages      int
	MaxArticles   int
	DelayMin      time.Duration
	DelayMax      time.Duration
	RespectRobots bool
	UserAgent     string
}

// Frontier owns the visited set and work queue for one site run. It must not
// be shared across concurrent site runs.
type Frontier struct {
	cfg        FrontierConfig
	classifier *classify.Classifier
	fetcher    *fetch.Fetcher
	robots     *robotstxt.Group
}

func NewFrontier(cfg FrontierConfig, classifier *classify.Classifier, fetcher *fetch.Fetcher) *Frontier {
	return &Frontier{cfg: cfg, classifier: classifier, fetcher: fetcher}
}

// Discover runs bounded breadth-first discovery from startURL and returns
// article URLs in discovery order, at most MaxArticles of them. It stops
// as soon as either budget is hit, regardless of queue state.
func (f *Frontier) Discover(startURL string) []string {
	visited := make(map[string]bool)
	queue := NewQueue()
	queue.Add(startURL)

	var articles []string
	collected := make(map[string]bool)

	if f.cfg.RespectRobots {
		f.loadRobots(startURL)
	}

	for queue.Len() > 0 && len(visited) < f.cfg.MaxPages && len(articles) < f.cfg.MaxArticles {
		current, ok := queue.Next()
		if !ok {
			break
		}
		if visited[current] {
			continue
		}
		if !f.robotsAllowed(current) {
			continue
		}
		visited[current] = true

		res := f.fetcher.Get(current)
		if !res.OK {
			log.Printf("[discovery] fetch failed %s: %v", current, res.Err)
			f.pause()
			continue
		}
		log.Printf("[discovery] visiting %s (visited=%d articles=%d)", current, len(visited), len(articles))

		for _, link := range ExtractLinks(res.Body, current) {
			label := f.classifier.Classify(link)
			if label == classify.Excluded {
				continue
			}

			queue.Add(link)

			if label == classify.Article && !collected[link] {
				collected[link] = true
				articles = append(articles, link)
				if len(articles) >= f.cfg.MaxArticles {
					log.Printf("[discovery] hard stop: %d article URLs", len(articles))
					break
				}
			}
		}

		f.pause()
	}

	if len(articles) > f.cfg.MaxArticles {
		articles = articles[:f.cfg.MaxArticles]
	}
	log.Printf("[discovery] done: %d articles, %d pages visited", len(articles), len(visited))
	return articles
}

// pause sleeps a randomized delay between requests. Rate limiting is policy
// here, not an accident: one in-flight request per site, paced.
func (f *Frontier) pause() {
	if f.cfg.DelayMax <= 0 {
		return
	}
	delay := f.cfg.DelayMin
	if f.cfg.DelayMax > f.cfg.DelayMin {
		delay += time.Duration(rand.Int63n(int64(f.cfg.DelayMax - f.cfg.DelayMin)))
	}
	time.Sleep(delay)
}

func (f *Frontier) loadRobots(startURL string) {
	u, err := url.Parse(startURL)
	if err != nil {
		return
	}
	res := f.fetcher.Get(fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host))
	if !res.OK {
		return
	}
	data, err := robotstxt.FromString(res.Body)
	if err != nil {
		log.Printf("[discovery] robots.txt parse failed: %v", err)
		return
	}
	f.robots = data.FindGroup(f.cfg.UserAgent)
}

func (f *Frontier) robotsAllowed(rawURL string) bool {
	if f.robots == nil {
		return true
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return f.robots.Test(u.Path)
}
