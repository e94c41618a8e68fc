package catalog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"promostore/internal/catalog"
	"promostore/internal/model"
	"promostore/internal/store"
	"promostore/internal/store/memstore"
	"promostore/internal/vendors"
)

type fakeFetcher struct {
	vendor.Status
	name     string
	products []model.Product
	err      error
	calls    int
}

func (f *fakeFetcher) Name() string { return f.name }

func (f *fakeFetcher) Fetch(context.Context) ([]model.Product, error) {
	f.Begin()
	f.calls++
	if f.err != nil {
		f.Finish(false)
		return nil, f.err
	}
	f.Finish(true)
	return f.products, nil
}

func product(api, id, name string, qty int) model.Product {
	return model.Product{
		Api:           api,
		ID:            id,
		Name:          name,
		Category:      []string{},
		Images:        []model.ImageSet{},
		MainImage:     model.PlaceholderImage,
		TableQuantity: []model.VariantRow{{Quantity: qty}},
		TotalProducts: qty,
	}
}

func newService(fetchers ...vendor.Fetcher) (*catalog.Service, *store.Oracle) {
	return newServiceOver(memstore.New(), fetchers...)
}

func newServiceOver(docs store.DocStore, fetchers ...vendor.Fetcher) (*catalog.Service, *store.Oracle) {
	oracle := store.NewOracle(docs)
	return catalog.New(fetchers, store.NewCatalog(docs), oracle), oracle
}

// flakyStore fails its first failures Apply calls, then heals.
type flakyStore struct {
	*memstore.Store
	failures int
	applies  int
}

func (f *flakyStore) Apply(ctx context.Context, ops []store.Op) error {
	f.applies++
	if f.applies <= f.failures {
		return errors.New("transient write failure")
	}
	return f.Store.Apply(ctx, ops)
}

func TestRefresh_NonPrivilegedNeverTriggersFetch(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{name: "forpromo", products: []model.Product{product("forpromo", "P-1", "Taza", 1)}}
	svc, _ := newService(f)

	products, err := svc.Refresh(context.Background(), false, true)
	require.NoError(t, err)
	require.Empty(t, products, "nothing persisted yet, nothing fetched")
	require.Zero(t, f.calls, "non-privileged callers read the snapshot only")
}

func TestRefresh_MergesAndPersistsAllVendorsSorted(t *testing.T) {
	t.Parallel()

	a := &fakeFetcher{name: "forpromo", products: []model.Product{
		product("forpromo", "F-1", "Termo", 5),
		product("forpromo", "F-2", "Agenda", 2),
	}}
	b := &fakeFetcher{name: "innova", products: []model.Product{
		product("innova", "I-1", "Ábaco", 1),
	}}
	svc, _ := newService(a, b)

	merged, err := svc.Refresh(context.Background(), true, false)
	require.NoError(t, err)
	require.Equal(t, []string{"Ábaco", "Agenda", "Termo"}, names(merged), "locale-aware name order")

	// The snapshot read path returns the same catalog.
	persisted, err := svc.GetAllProducts(context.Background())
	require.NoError(t, err)
	require.Equal(t, names(merged), names(persisted))

	last, err := svc.GetLastUpdate(context.Background())
	require.NoError(t, err)
	require.False(t, last.IsZero(), "refresh must move the marker")
}

func TestRefresh_DeterministicAcrossRuns(t *testing.T) {
	t.Parallel()

	a := &fakeFetcher{name: "forpromo", products: []model.Product{
		product("forpromo", "F-1", "Gorra", 1),
		product("forpromo", "F-2", "Bolígrafo", 1),
	}}
	b := &fakeFetcher{name: "dvela", products: []model.Product{
		product("dvela", "D-1", "Gorra", 1),
	}}

	svc1, _ := newService(a, b)
	first, err := svc1.Refresh(context.Background(), true, false)
	require.NoError(t, err)

	svc2, _ := newService(a, b)
	second, err := svc2.Refresh(context.Background(), true, false)
	require.NoError(t, err)

	require.Equal(t, keys(first), keys(second), "merge order is stable run to run")
	require.Equal(t, []string{"Bolígrafo", "Gorra", "Gorra"}, names(first))
}

func TestRefresh_FailingVendorDegradesToEmpty(t *testing.T) {
	t.Parallel()

	ok := &fakeFetcher{name: "innova", products: []model.Product{
		product("innova", "I-1", "Pluma", 1),
		product("innova", "I-2", "Cuaderno", 3),
	}}
	down := &fakeFetcher{name: "cdopromo", err: errors.New("vendor down")}
	svc, _ := newService(ok, down)

	merged, err := svc.Refresh(context.Background(), true, false)
	require.NoError(t, err, "a failing vendor must never abort the cycle")
	require.Equal(t, []string{"Cuaderno", "Pluma"}, names(merged))
	require.False(t, down.Succeeded())
	require.True(t, ok.Succeeded())
}

func TestRefresh_FailedVendorKeepsItsPreviousSnapshot(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{name: "cdopromo", products: []model.Product{product("cdopromo", "C-1", "Llavero", 9)}}
	svc, _ := newService(f)

	_, err := svc.Refresh(context.Background(), true, false)
	require.NoError(t, err)

	// Vendor goes dark; its previously persisted products must survive.
	f.err = errors.New("vendor down")
	merged, err := svc.Refresh(context.Background(), true, true)
	require.NoError(t, err)
	require.Equal(t, []string{"Llavero"}, names(merged))
}

func TestRefresh_SkipsFetchWhenFresh(t *testing.T) {
	t.Parallel()

	f := &fakeFetcher{name: "forpromo", products: []model.Product{product("forpromo", "F-1", "Taza", 1)}}
	svc, oracle := newService(f)

	require.NoError(t, oracle.MarkRefreshed(context.Background()))

	_, err := svc.Refresh(context.Background(), true, false)
	require.NoError(t, err)
	require.Zero(t, f.calls, "same-day marker means no live refresh")

	// force overrides the staleness check.
	_, err = svc.Refresh(context.Background(), true, true)
	require.NoError(t, err)
	require.Equal(t, 1, f.calls)
}

func TestRefresh_RetriesFailedSaveOnce(t *testing.T) {
	t.Parallel()

	flaky := &flakyStore{Store: memstore.New(), failures: 1}
	f := &fakeFetcher{name: "innova", products: []model.Product{product("innova", "I-1", "Mochila", 4)}}
	svc, _ := newServiceOver(flaky, f)

	merged, err := svc.Refresh(context.Background(), true, false)
	require.NoError(t, err, "a single transient save failure is absorbed by the retry")
	require.Equal(t, []string{"Mochila"}, names(merged))
	require.Equal(t, 2, flaky.applies)

	last, err := svc.GetLastUpdate(context.Background())
	require.NoError(t, err)
	require.False(t, last.IsZero())
}

func TestRefresh_PersistentSaveFailurePropagates(t *testing.T) {
	t.Parallel()

	flaky := &flakyStore{Store: memstore.New(), failures: 1 << 30}
	f := &fakeFetcher{name: "innova", products: []model.Product{product("innova", "I-1", "Mochila", 4)}}
	svc, _ := newServiceOver(flaky, f)

	_, err := svc.Refresh(context.Background(), true, false)
	require.ErrorContains(t, err, "persist innova")
	require.Equal(t, 2, flaky.applies, "exactly one retry before giving up")

	last, err := svc.GetLastUpdate(context.Background())
	require.NoError(t, err)
	require.True(t, last.IsZero(), "a failed cycle must not advance the marker")
}

func TestVendorStatuses_SnapshotsFlags(t *testing.T) {
	t.Parallel()

	a := &fakeFetcher{name: "forpromo"}
	b := &fakeFetcher{name: "dvela", err: errors.New("down")}
	svc, _ := newService(a, b)

	_, err := svc.Refresh(context.Background(), true, false)
	require.NoError(t, err)

	statuses := svc.VendorStatuses()
	require.Len(t, statuses, 2)
	byName := map[string]catalog.VendorStatus{}
	for _, s := range statuses {
		byName[s.Name] = s
	}
	require.True(t, byName["forpromo"].Succeeded)
	require.False(t, byName["dvela"].Succeeded)
	require.False(t, byName["forpromo"].Loading)
	require.False(t, byName["dvela"].Loading)
}

func names(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func keys(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Api+":"+p.ID)
	}
	return out
}
