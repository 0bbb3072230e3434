package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Site is one entry from the sites file: a crawl target plus its optional feed.
type Site struct {
	SiteURL string `json:"site_url"`
	RSSURL  string `json:"rss_url,omitempty"`
}

type Blog struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	URL      string             `bson:"url"`
	FeedURL  string             `bson:"feed_url,omitempty"`
	Language string             `bson:"language"`
}

// Post is a finished article record. It is built once, after both admission
// gates pass, and is not mutated afterwards.
type Post struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	BlogID        primitive.ObjectID `bson:"blog_id"`
	URL           string             `bson:"url"`
	Title         string             `bson:"title"`
	Content       string             `bson:"content"`
	HTMLContent   string             `bson:"html_content"`
	Author        string             `bson:"author"`
	Tags          []string           `bson:"tags"`
	Published     time.Time          `bson:"published"`
	Summary       string             `bson:"summary,omitempty"`
	ContentLength int                `bson:"content_length"`
	ScrapedAt     time.Time          `bson:"scraped_at"`
}
