package innova

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

type Config struct {
	BaseURL string
}

// Fetcher pulls the innova catalog, a single unauthenticated GET returning
// the whole product list as one flat array.
type Fetcher struct {
	vendor.Status
	cfg Config
}

func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.innovapromo.mx"
	}
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) Name() string { return model.APIInnova }

func (f *Fetcher) Fetch(ctx context.Context) ([]model.Product, error) {
	f.Begin()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.cfg.BaseURL+"/products.json", nil)
	if err != nil {
		f.Finish(false)
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		f.Finish(false)
		return nil, fmt.Errorf("innova fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		f.Finish(false)
		return nil, fmt.Errorf("innova status %d", resp.StatusCode)
	}

	var raws []rawProduct
	if err := json.NewDecoder(resp.Body).Decode(&raws); err != nil {
		f.Finish(false)
		return nil, fmt.Errorf("innova decode: %w", err)
	}

	out := make([]model.Product, 0, len(raws))
	for _, raw := range raws {
		out = append(out, normalize(raw))
	}
	f.Finish(true)
	return out, nil
}
