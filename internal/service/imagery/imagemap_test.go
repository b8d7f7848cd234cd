package imagery

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/cache"
	"storefront/internal/domain"
)

type stubLookup struct {
	mu       sync.Mutex
	products []domain.Product
	err      error
	calls    int
	lastIDs  []string
	deadline bool
}

func (s *stubLookup) ListProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastIDs = append([]string(nil), ids...)
	_, s.deadline = ctx.Deadline()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.err != nil {
		return nil, s.err
	}
	var out []domain.Product
	for _, p := range s.products {
		for _, id := range ids {
			if p.ID == id {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func catalog() []domain.Product {
	return []domain.Product{
		{
			ID:        "prod_a",
			Thumbnail: "A.png",
			Variants: []domain.Variant{
				{ID: "a_red", Thumbnail: "A-red.png"},
				{ID: "a_blue"},
			},
		},
		{
			ID:     "prod_b",
			Images: imgs("B1.png"),
			Variants: []domain.Variant{
				{ID: "b_one", Images: imgs("B-one.png")},
			},
		},
	}
}

func TestImageMapPriority(t *testing.T) {
	lookup := &stubLookup{products: catalog()}
	mapper := NewMapper(lookup, cache.NewMemoryImageCache(), nil)

	items := []domain.LineItem{
		{ID: "l1", ProductID: "prod_a", VariantID: "a_red", Thumbnail: "item.png"},
		{ID: "l2", ProductID: "prod_a", VariantID: "a_blue", Thumbnail: "item-blue.png"},
		{ID: "l3", ProductID: "prod_a", VariantID: "a_blue"},
		{ID: "l4", ProductID: "prod_b", VariantID: "b_one"},
		{ID: "l5", ProductID: "prod_gone", VariantID: "x"},
	}
	m := mapper.Map(context.Background(), items)

	cases := map[string]string{
		"l1": "A-red.png",
		"l2": "item-blue.png",
		"l3": "A.png",
		"l4": "B-one.png",
		"l5": "",
	}
	for _, item := range items {
		if got := m.For(item); got != cases[item.ID] {
			t.Fatalf("item %s: expected %q, got %q", item.ID, cases[item.ID], got)
		}
	}
	if lookup.calls != 1 {
		t.Fatalf("expected one bulk lookup, got %d", lookup.calls)
	}
	if len(lookup.lastIDs) != 3 {
		t.Fatalf("expected distinct ids in lookup, got %v", lookup.lastIDs)
	}
}

func TestImageMapSkipsResolvedProducts(t *testing.T) {
	lookup := &stubLookup{products: catalog()}
	mapper := NewMapper(lookup, cache.NewMemoryImageCache(), nil)
	items := []domain.LineItem{{ProductID: "prod_a", VariantID: "a_red"}}

	mapper.Map(context.Background(), items)
	mapper.Map(context.Background(), items)
	if lookup.calls != 1 {
		t.Fatalf("expected cached second call, got %d lookups", lookup.calls)
	}

	items = append(items, domain.LineItem{ProductID: "prod_b", VariantID: "b_one"})
	mapper.Map(context.Background(), items)
	if lookup.calls != 2 || len(lookup.lastIDs) != 1 || lookup.lastIDs[0] != "prod_b" {
		t.Fatalf("expected lookup of only the new product, got calls=%d ids=%v", lookup.calls, lookup.lastIDs)
	}
}

func TestImageMapLookupFailureFallsBackToThumbnail(t *testing.T) {
	lookup := &stubLookup{err: errors.New("backend down")}
	mapper := NewMapper(lookup, nil, nil)
	item := domain.LineItem{ProductID: "prod_a", VariantID: "a_red", Thumbnail: "item.png"}

	m := mapper.Map(context.Background(), []domain.LineItem{item})
	if got := m.For(item); got != "item.png" {
		t.Fatalf("expected item thumbnail, got %q", got)
	}
	if m.Has("prod_a") {
		t.Fatalf("failed product should stay unresolved")
	}
}

func TestImageMapEmptyItemsMakesNoCalls(t *testing.T) {
	lookup := &stubLookup{}
	mapper := NewMapper(lookup, nil, nil)
	mapper.Map(context.Background(), nil)
	if lookup.calls != 0 {
		t.Fatalf("expected no lookups, got %d", lookup.calls)
	}
}

func TestImageMapConcurrentCallsAreSafe(t *testing.T) {
	lookup := &stubLookup{products: catalog()}
	mapper := NewMapper(lookup, cache.NewMemoryImageCache(), nil)
	items := []domain.LineItem{{ProductID: "prod_a", VariantID: "a_red"}, {ProductID: "prod_b", VariantID: "b_one"}}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := mapper.Map(context.Background(), items)
			if m.For(items[0]) != "A-red.png" {
				t.Errorf("unexpected image %q", m.For(items[0]))
			}
		}()
	}
	wg.Wait()
	if lookup.calls == 0 || lookup.calls > 8 {
		t.Fatalf("unexpected lookup count %d", lookup.calls)
	}
}

func TestImageMapSharedLookupIgnoresCallerCancel(t *testing.T) {
	lookup := &stubLookup{products: catalog()}
	mapper := NewMapper(lookup, cache.NewMemoryImageCache(), nil)
	items := []domain.LineItem{{ProductID: "prod_a", VariantID: "a_red"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	m := mapper.Map(ctx, items)
	if got := m.For(items[0]); got != "A-red.png" {
		t.Fatalf("expected lookup to run despite cancelled caller, got %q", got)
	}
	if !lookup.deadline {
		t.Fatalf("shared lookup should run with a timeout")
	}
}

func TestEntryFor(t *testing.T) {
	entry := EntryFor(catalog()[0])
	if entry.ProductID != "prod_a" || entry.Fallback != "A.png" {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if len(entry.Variants) != 1 || entry.Variants["a_red"] != "A-red.png" {
		t.Fatalf("unexpected variants %+v", entry.Variants)
	}
}
