package innova

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"promostore/internal/model"
)

func sampleRaw() rawProduct {
	var raw rawProduct
	data := []byte(`{
		"idProduct": "IN-500",
		"nameProduct": "agenda ecol&oacute;gica",
		"descriptionProduct": "Agenda con pasta de cart&oacute;n",
		"materials": "Cart&oacute;n reciclado",
		"printing": "Serigraf&iacute;a",
		"size": "21 x 14 cm",
		"printingArea": "8 x 5 cm",
		"categories": "OFICINA, ecolog&iacute;a, ",
		"images": ["https://cdn.innova.test/in-500-a.jpg", "https://cdn.innova.test/in-500-b.jpg"],
		"colors": [
			{"color": "#8b4513", "name": "CAFÉ", "quantity": 200, "price": 45},
			{"color": "#228b22", "name": "VERDE", "quantity": 80, "price": 45}
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

	require.Equal(t, model.APIInnova, p.Api)
	require.Equal(t, "IN-500", p.ID)
	require.Equal(t, "Agenda Ecológica", p.Name)
	require.Equal(t, []string{"Oficina", "Ecología"}, p.Category, "comma list is split, trimmed and empty-filtered")
	require.Len(t, p.Images, 1)
	require.Equal(t, []string{"https://cdn.innova.test/in-500-a.jpg", "https://cdn.innova.test/in-500-b.jpg"}, p.Images[0].URLImage)
	require.Equal(t, "https://cdn.innova.test/in-500-a.jpg", p.MainImage)
	require.Equal(t, 280, p.TotalProducts)
	require.Equal(t, model.SumQuantities(p.TableQuantity), p.TotalProducts)
}

func TestNormalize_Idempotent(t *testing.T) {
	t.Parallel()

	raw := sampleRaw()
	require.Equal(t, normalize(raw), normalize(raw))
}

func TestNormalize_MissingEverythingDegradesQuietly(t *testing.T) {
	t.Parallel()

	p := normalize(rawProduct{IDProduct: "IN-0"})

	require.Equal(t, "IN-0", p.ID)
	require.Empty(t, p.Name)
	require.Equal(t, []string{}, p.Category)
	require.Empty(t, p.Images)
	require.Equal(t, model.PlaceholderImage, p.MainImage)
	require.Empty(t, p.TableQuantity)
	require.Zero(t, p.TotalProducts)
}

func TestFetch_FlatArray(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/products.json", r.URL.Path)
		fmt.Fprint(w, `[{"idProduct": "IN-1", "nameProduct": "Uno"}, {"idProduct": "IN-2", "nameProduct": "Dos"}]`)
	}))
	defer srv.Close()

	f := New(Config{BaseURL: srv.URL})
	products, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	require.True(t, f.Succeeded())
}
