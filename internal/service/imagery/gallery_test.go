package imagery

import (
	"reflect"
	"testing"

	"storefront/internal/domain"
)

func galleryProduct() *domain.Product {
	return &domain.Product{
		ID:     "prod_1",
		Images: imgs("P1.png", "P2.png", "P3.png"),
		Variants: []domain.Variant{
			{ID: "red", Thumbnail: "R.png"},
			{ID: "blue", Images: imgs("B1.png", "B2.png")},
		},
	}
}

func TestGallerySelectResetsIndex(t *testing.T) {
	p := galleryProduct()
	g := NewGallery(p, p.Variant("red"), placeholder)
	g.Show(3)
	if g.Index() != 3 || g.Current() != "P3.png" {
		t.Fatalf("unexpected position %d %q", g.Index(), g.Current())
	}

	g.Select(p.Variant("blue"))
	if g.Index() != 0 {
		t.Fatalf("expected index reset to 0, got %d", g.Index())
	}
	if g.VariantID() != "blue" || g.Current() != "B1.png" {
		t.Fatalf("unexpected selection %q %q", g.VariantID(), g.Current())
	}
	want := []string{"B1.png", "B2.png", "P1.png", "P2.png", "P3.png"}
	if !reflect.DeepEqual(g.Images(), want) {
		t.Fatalf("unexpected images %v", g.Images())
	}
}

func TestGallerySelectSameVariantStillResets(t *testing.T) {
	p := galleryProduct()
	g := NewGallery(p, p.Variant("red"), placeholder)
	g.Show(2)
	g.Select(p.Variant("red"))
	if g.Index() != 0 {
		t.Fatalf("expected reset, got %d", g.Index())
	}
}

func TestGalleryShowClamps(t *testing.T) {
	p := galleryProduct()
	g := NewGallery(p, nil, placeholder)
	g.Show(-4)
	if g.Index() != 0 {
		t.Fatalf("expected clamp to 0, got %d", g.Index())
	}
	g.Show(40)
	if g.Index() != 2 || g.Current() != "P3.png" {
		t.Fatalf("expected clamp to last, got %d %q", g.Index(), g.Current())
	}
}

func TestGalleryUnknownVariantSelectsNone(t *testing.T) {
	p := galleryProduct()
	g := NewGallery(p, p.Variant("red"), placeholder)
	g.Select(p.Variant("missing"))
	if g.VariantID() != "" || g.Current() != "P1.png" {
		t.Fatalf("unexpected state %q %q", g.VariantID(), g.Current())
	}
}
