package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"article_spider/internal/config"
	"article_spider/internal/models"
)

// MongoDB stores blogs and their posts. Idempotence for repeated article
// URLs comes from the unique {blog_id, url} index, not from any locking in
// the crawler.
type MongoDB struct {
	client *mongo.Client
	blogs  *mongo.Collection
	posts  *mongo.Collection
}

func NewMongoDB(cfg config.DBConfig) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Connection))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("can't ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)
	d := &MongoDB{
		client: client,
		blogs:  database.Collection(cfg.Collections.Blogs),
		posts:  database.Collection(cfg.Collections.Posts),
	}

	if err := d.createIndexes(); err != nil {
		return nil, fmt.Errorf("can't create indexes: %w", err)
	}

	return d, nil
}

func (d *MongoDB) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := d.posts.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "blog_id", Value: 1},
			{Key: "url", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return err
	}

	_, err = d.blogs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "url", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// FindOrCreateBlog returns the blog row for a site, creating it on first
// sight. Lookup matches either the site URL or the feed URL.
func (d *MongoDB) FindOrCreateBlog(siteURL, feedURL string) (*models.Blog, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"url": siteURL}
	if feedURL != "" {
		filter = bson.M{"$or": bson.A{
			bson.M{"url": siteURL},
			bson.M{"feed_url": feedURL},
		}}
	}

	var blog models.Blog
	err := d.blogs.FindOne(ctx, filter).Decode(&blog)
	if err == nil {
		return &blog, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	blog = models.Blog{
		Name:     hostOf(siteURL),
		URL:      siteURL,
		FeedURL:  feedURL,
		Language: "en",
	}
	res, err := d.blogs.InsertOne(ctx, blog)
	if err != nil {
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		blog.ID = id
	}
	return &blog, nil
}

// InsertPost inserts a finished article record and returns its id. A
// duplicate canonical URL for the same blog returns an empty id and no
// error: the caller counts it as skipped.
func (d *MongoDB) InsertPost(post *models.Post) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := d.posts.InsertOne(ctx, post)
	if mongo.IsDuplicateKeyError(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return id.Hex(), nil
}

func (d *MongoDB) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return d.client.Disconnect(ctx)
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
