package forpromo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"promostore/internal/cache"
	"promostore/internal/model"
)

func sampleRaw() rawProduct {
	var raw rawProduct
	data := []byte(`{
		"sku": "FP-100",
		"name": "TERMO MET&Aacute;LICO usb",
		"description": "<p>Termo de <b>acero</b></p>",
		"material": "Acero inoxidable",
		"printing_type": "Serigraf&iacute;a",
		"size": "20 x 7 cm",
		"print_area": "5 x 5 cm",
		"main_image": "https://cdn.forpromo.test/fp-100.jpg",
		"categories": [{"name": "BEBIDAS"}, {"name": ""}],
		"images": [
			{"url": "https://cdn.forpromo.test/fp-100-red.jpg", "color": "#ff0000"},
			{"url": "", "color": "#00ff00"}
		],
		"variants": [
			{"color_code": "#ff0000", "color_name": "ROJO", "stock": 120, "price": 85.5, "sku": "FP-100-R"},
			{"color_code": "#0000ff", "color_name": "AZUL", "stock": 30, "price": 85.5, "sku": "FP-100-A"}
		]
	}`)
	if err := json.Unmarshal(data, &raw); err != nil {
		panic(err)
	}
	return raw
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	p := normalize(sampleRaw())

	require.Equal(t, model.APIForpromo, p.Api)
	require.Equal(t, "FP-100", p.ID)
	require.Equal(t, "Termo Metálico USB", p.Name)
	require.Equal(t, "Termo de acero", p.Description)
	require.Equal(t, "Serigrafía", p.Printing)
	require.Equal(t, []string{"Bebidas"}, p.Category, "empty categories are filtered")
	require.Len(t, p.Images, 1, "empty image URLs are filtered")
	require.Equal(t, "https://cdn.forpromo.test/fp-100.jpg", p.MainImage)
	require.Len(t, p.TableQuantity, 2)
	require.Equal(t, 150, p.TotalProducts)
	require.Equal(t, model.SumQuantities(p.TableQuantity), p.TotalProducts)
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	raw := sampleRaw()
	require.Equal(t, normalize(raw), normalize(raw))
}

func TestNormalize_NoImagesFallsBackToPlaceholder(t *testing.T) {
	t.Parallel()

	raw := sampleRaw()
	raw.MainImage = ""
	raw.Images = nil

	p := normalize(raw)
	require.NotNil(t, p.Images)
	require.Empty(t, p.Images)
	require.Equal(t, model.PlaceholderImage, p.MainImage)
}

func TestFetch_WalksAllPages(t *testing.T) {
	t.Parallel()

	var pagesServed atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagesServed.Add(1)
		page := r.URL.Query().Get("page")
		fmt.Fprintf(w, `{
			"meta": {"pagination": {"total_count": 120}},
			"products": [{"sku": "FP-%s", "name": "Producto %s", "variants": [{"stock": 1}]}]
		}`, page, page)
	}))
	defer srv.Close()

	c := cache.New[[]model.Product](time.Minute, 0, 0)
	defer c.Stop()
	f := New(Config{BaseURL: srv.URL}, c, time.Minute)
	f.limiter.SetLimit(1e6) // no pacing in tests

	products, err := f.Fetch(context.Background())
	require.NoError(t, err)
	// 120 products at 50 per page -> 3 pages.
	require.Equal(t, int32(3), pagesServed.Load())
	require.Len(t, products, 3)
	require.False(t, f.Loading())
	require.True(t, f.Succeeded())
}

func TestFetch_SecondCallServedFromCache(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, `{"meta": {"pagination": {"total_count": 1}}, "products": [{"sku": "FP-1", "name": "Uno"}]}`)
	}))
	defer srv.Close()

	c := cache.New[[]model.Product](time.Minute, 0, 0)
	defer c.Stop()
	f := New(Config{BaseURL: srv.URL}, c, time.Minute)
	f.limiter.SetLimit(1e6)

	_, err := f.Fetch(context.Background())
	require.NoError(t, err)
	_, err = f.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, int32(1), calls.Load(), "second fetch must be a cache hit")
}

func TestFetch_FirstPageFailureMarksVendorDownAndCachesNothing(t *testing.T) {
	t.Parallel()

	var healthy atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			http.Error(w, "down", http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"meta": {"pagination": {"total_count": 1}}, "products": [{"sku": "FP-1", "name": "Uno"}]}`)
	}))
	defer srv.Close()

	c := cache.New[[]model.Product](time.Minute, 0, 0)
	defer c.Stop()
	f := New(Config{BaseURL: srv.URL}, c, time.Minute)
	f.limiter.SetLimit(1e6)

	products, err := f.Fetch(context.Background())
	require.Error(t, err, "a dead upstream is a failed fetch, not an empty catalog")
	require.Empty(t, products)
	require.False(t, f.Succeeded())
	require.False(t, f.Loading())

	// The failure must not be cached: once the upstream recovers, the next
	// fetch goes back to the wire and succeeds.
	healthy.Store(true)
	products, err = f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	require.True(t, f.Succeeded())
}
