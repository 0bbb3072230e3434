package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"

	"article_spider/internal/app"
	"article_spider/internal/config"
	"article_spider/internal/db"
	"article_spider/internal/models"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the runtime configuration")
	sitesPath := flag.String("sites", "sites.json", "path to the site list")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sites, err := loadSites(*sitesPath)
	if err != nil {
		log.Fatalf("load sites: %v", err)
	}

	store, err := db.NewMongoDB(cfg.DB)
	if err != nil {
		log.Fatalf("connect store: %v", err)
	}
	defer store.Close()

	inserted, skipped := app.New(cfg, store).Run(sites)
	log.Printf("finished: %d new posts, %d skipped", inserted, skipped)
}

func loadSites(path string) ([]models.Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sites []models.Site
	if err := json.Unmarshal(data, &sites); err != nil {
		return nil, err
	}
	return sites, nil
}
