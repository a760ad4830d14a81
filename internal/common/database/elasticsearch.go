package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"listings-workers/internal/common/config"
	apperrors "listings-workers/internal/common/errors"

	"github.com/elastic/go-elasticsearch/v8"
)

// listingsMapping is the index layout the catalog mirror is created with.
const listingsMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "title":       {"type": "text"},
      "category":    {"type": "keyword"},
      "description": {"type": "text"},
      "tags":        {"type": "text"},
      "priceFrom":   {"type": "double"},
      "rating":      {"type": "double"},
      "createdAt":   {"type": "date"},
      "location": {
        "properties": {
          "flatArea":    {"type": "text"},
          "nestedArea":  {"type": "text"},
          "raw":         {"type": "text"},
          "address":     {"type": "text"},
          "city":        {"type": "keyword"},
          "geolocation": {"type": "text"}
        }
      }
    }
  }
}`

type ElasticsearchClient struct {
	Client *elasticsearch.Client
	Index  string
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}
	if len(esCfg.Addresses) == 0 && cfg.URL != "" {
		esCfg.Addresses = []string{cfg.URL}
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	index := cfg.Index
	if index == "" {
		index = "listings"
	}

	return &ElasticsearchClient{Client: es, Index: index}, nil
}

func (c *ElasticsearchClient) Ping() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(
		c.Client.Ping.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewElasticsearchConnectionFailedError(err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}

	return nil
}

// EnsureIndex creates the listings index with its mapping when missing.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context) error {
	res, err := c.Client.Indices.Exists([]string{c.Index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index %s: %w", c.Index, err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.Client.Indices.Create(
		c.Index,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(strings.NewReader(listingsMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", c.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", c.Index, res.Status())
	}
	return nil
}
