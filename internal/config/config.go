package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type DBConfig struct {
	Connection  string `yaml:"connection"`
	Database    string `yaml:"database"`
	Collections struct {
		Blogs string `yaml:"blogs"`
		Posts string `yaml:"posts"`
	} `yaml:"collections"`
}

type CrawlConfig struct {
	MaxPages       int    `yaml:"max_pages"`
	MaxArticles    int    `yaml:"max_articles"`
	MaxPosts       int    `yaml:"max_posts"`
	DelayMinMS     int    `yaml:"delay_min_ms"`
	DelayMaxMS     int    `yaml:"delay_max_ms"`
	ArticleDelayMS int    `yaml:"article_delay_ms"`
	TimeoutSec     int    `yaml:"timeout_sec"`
	UserAgent      string `yaml:"user_agent"`
	RespectRobots  bool   `yaml:"respect_robots"`
}

type ExtractConfig struct {
	// Strategy is one of "llm", "manual" or "readability".
	Strategy   string `yaml:"strategy"`
	MinTextLen int    `yaml:"min_text_len"`
	ChunkSize  int    `yaml:"chunk_size"`
}

type LLMConfig struct {
	APIURL     string `yaml:"api_url"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
	MaxTokens  int    `yaml:"max_tokens"`
}

type Config struct {
	DB      DBConfig      `yaml:"db"`
	Crawl   CrawlConfig   `yaml:"crawl"`
	Extract ExtractConfig `yaml:"extract"`
	LLM     LLMConfig     `yaml:"llm"`
}

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Default returns the built-in configuration mirroring the crawler's
// conservative stock limits.
func Default() *Config {
	cfg := &Config{}
	cfg.DB.Collections.Blogs = "blogs"
	cfg.DB.Collections.Posts = "posts"
	cfg.Crawl = CrawlConfig{
		MaxPages:       500,
		MaxArticles:    10,
		MaxPosts:       10,
		DelayMinMS:     1500,
		DelayMaxMS:     4000,
		ArticleDelayMS: 200,
		TimeoutSec:     15,
		UserAgent:      defaultUserAgent,
	}
	cfg.Extract = ExtractConfig{
		Strategy:   "llm",
		MinTextLen: 50,
		ChunkSize:  8000,
	}
	cfg.LLM = LLMConfig{
		TimeoutSec: 200,
		MaxTokens:  4096,
	}
	return cfg
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := Default()
	if cfg.DB.Collections.Blogs == "" {
		cfg.DB.Collections.Blogs = def.DB.Collections.Blogs
	}
	if cfg.DB.Collections.Posts == "" {
		cfg.DB.Collections.Posts = def.DB.Collections.Posts
	}
	if cfg.Crawl.MaxPages == 0 {
		cfg.Crawl.MaxPages = def.Crawl.MaxPages
	}
	if cfg.Crawl.MaxArticles == 0 {
		cfg.Crawl.MaxArticles = def.Crawl.MaxArticles
	}
	if cfg.Crawl.MaxPosts == 0 {
		cfg.Crawl.MaxPosts = def.Crawl.MaxPosts
	}
	if cfg.Crawl.DelayMinMS == 0 {
		cfg.Crawl.DelayMinMS = def.Crawl.DelayMinMS
	}
	if cfg.Crawl.DelayMaxMS == 0 {
		cfg.Crawl.DelayMaxMS = def.Crawl.DelayMaxMS
	}
	if cfg.Crawl.ArticleDelayMS == 0 {
		cfg.Crawl.ArticleDelayMS = def.Crawl.ArticleDelayMS
	}
	if cfg.Crawl.TimeoutSec == 0 {
		cfg.Crawl.TimeoutSec = def.Crawl.TimeoutSec
	}
	if cfg.Crawl.UserAgent == "" {
		cfg.Crawl.UserAgent = def.Crawl.UserAgent
	}
	if cfg.Extract.Strategy == "" {
		cfg.Extract.Strategy = def.Extract.Strategy
	}
	if cfg.Extract.MinTextLen == 0 {
		cfg.Extract.MinTextLen = def.Extract.MinTextLen
	}
	if cfg.Extract.ChunkSize == 0 {
		cfg.Extract.ChunkSize = def.Extract.ChunkSize
	}
	if cfg.LLM.TimeoutSec == 0 {
		cfg.LLM.TimeoutSec = def.LLM.TimeoutSec
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = def.LLM.MaxTokens
	}
}
