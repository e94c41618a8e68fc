package cdopromo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"promostore/internal/model"
	"promostore/internal/vendors"
)

var httpClient = &http.Client{Timeout: 60 * time.Second}

type catalogResponse struct {
	Response []rawProduct `json:"response"`
}

type stockResponse struct {
	Stocks []stockEntry `json:"Stocks"`
}

type stockEntry struct {
	Material string `json:"Material"`
	Stock    int    `json:"Stock"`
}

type Config struct {
	BaseURL  string
	User     string
	Password string
}

// Fetcher pulls the cdopromo catalog and its stock feed. The two endpoints
// are independent, so both POSTs go out concurrently and are joined before
// normalization; a failure on either side drops the whole vendor for the
// cycle, since variants cannot be priced against missing stock.
type Fetcher struct {
	vendor.Status
	cfg Config
}

func New(cfg Config) *Fetcher {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cdopromocionales.com/v2"
	}
	return &Fetcher{cfg: cfg}
}

func (f *Fetcher) Name() string { return model.APICdopromo }

func (f *Fetcher) Fetch(ctx context.Context) ([]model.Product, error) {
	f.Begin()

	var (
		wg       sync.WaitGroup
		catalog  *catalogResponse
		stocks   *stockResponse
		catErr   error
		stockErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		catalog, catErr = f.fetchCatalog(ctx)
	}()
	go func() {
		defer wg.Done()
		stocks, stockErr = f.fetchStocks(ctx)
	}()
	wg.Wait()

	if catErr != nil {
		f.Finish(false)
		return nil, fmt.Errorf("cdopromo catalog: %w", catErr)
	}
	if stockErr != nil {
		f.Finish(false)
		return nil, fmt.Errorf("cdopromo stocks: %w", stockErr)
	}

	stockByMaterial := make(map[string]int, len(stocks.Stocks))
	for _, s := range stocks.Stocks {
		stockByMaterial[s.Material] = s.Stock
	}

	out := make([]model.Product, 0, len(catalog.Response))
	for _, raw := range catalog.Response {
		out = append(out, normalize(raw, stockByMaterial))
	}
	f.Finish(true)
	return out, nil
}

func (f *Fetcher) fetchCatalog(ctx context.Context) (*catalogResponse, error) {
	var result catalogResponse
	if err := f.post(ctx, "/products", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (f *Fetcher) fetchStocks(ctx context.Context) (*stockResponse, error) {
	var result stockResponse
	if err := f.post(ctx, "/stocks", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (f *Fetcher) post(ctx context.Context, path string, into any) error {
	body, _ := json.Marshal(map[string]string{
		"user":     f.cfg.User,
		"password": f.cfg.Password,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("cdopromo status %d on %s", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
