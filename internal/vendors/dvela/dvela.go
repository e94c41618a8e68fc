package dvela

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"promostore/internal/model"
	"promostore/internal/vendors"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

type listResponse struct {
	Results    []rawProduct `json:"results"`
	Categories []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"categories"`
}

type Config struct {
	BaseURL string
	Token   string
}

// Fetcher pulls the dvela catalog in a single token-authenticated call.
// The response carries its own category dictionary, which the normalizer
// uses to resolve the numeric category ids on each product.
type Fetcher struct {
	vendor.Status
	cfg Config
}

func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.dvelapromo.com"
	}
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) Name() string { return model.APIDvela }

func (f *Fetcher) Fetch(ctx context.Context) ([]model.Product, error) {
	f.Begin()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.BaseURL+"/api/products", nil)
	if err != nil {
		f.Finish(false)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Token "+f.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		f.Finish(false)
		return nil, fmt.Errorf("dvela fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.Finish(false)
		return nil, fmt.Errorf("dvela status %d", resp.StatusCode)
	}

	var result listResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		f.Finish(false)
		return nil, fmt.Errorf("dvela decode: %w", err)
	}

	categoryNames := make(map[int]string, len(result.Categories))
	for _, c := range result.Categories {
		categoryNames[c.ID] = c.Name
	}

	out := make([]model.Product, 0, len(result.Results))
	for _, raw := range result.Results {
		out = append(out, normalize(raw, categoryNames))
	}
	f.Finish(true)
	return out, nil
}
