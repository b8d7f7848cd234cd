// Package product serves catalog reads with resolved image galleries.
package product

import (
	"context"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/medusa"
	"storefront/internal/service/imagery"
)

const (
	defaultLimit = 12
	maxLimit     = 100
)

type Catalog interface {
	ListProducts(ctx context.Context, q medusa.ProductQuery) (*medusa.ProductPage, error)
	GetProductByHandle(ctx context.Context, handle, regionID string) (*domain.Product, error)
}

type Service struct {
	catalog     Catalog
	placeholder string
}

func New(catalog Catalog, placeholder string) *Service {
	return &Service{catalog: catalog, placeholder: placeholder}
}

type ListInput struct {
	RegionID string
	Limit    int
	Offset   int
}

// Summary is a listing card: the product plus the image to show for it.
type Summary struct {
	domain.Product
	Image string `json:"image"`
}

type Page struct {
	Products []Summary `json:"products"`
	Count    int       `json:"count"`
	Limit    int       `json:"limit"`
	Offset   int       `json:"offset"`
}

func (s *Service) List(ctx context.Context, in ListInput) (*Page, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}
	res, err := s.catalog.ListProducts(ctx, medusa.ProductQuery{RegionID: in.RegionID, Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	page := &Page{Products: make([]Summary, 0, len(res.Products)), Count: res.Count, Limit: limit, Offset: offset}
	for i := range res.Products {
		p := &res.Products[i]
		page.Products = append(page.Products, Summary{Product: *p, Image: imagery.Resolve(p, nil, s.placeholder)[0]})
	}
	return page, nil
}

// Detail is the product page state for one selected variant.
type Detail struct {
	Product   *domain.Product `json:"product"`
	VariantID string          `json:"selected_variant_id,omitempty"`
	Images    []string        `json:"images"`
	Index     int             `json:"image_index"`
	Current   string          `json:"current_image"`
}

// Get loads a product by handle and resolves its gallery for variantID,
// showing image (clamped to the gallery). An unknown variant falls back to
// the product's own images; a product with a single variant has it selected.
func (s *Service) Get(ctx context.Context, handle, regionID, variantID string, image int) (*Detail, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, domain.ErrNotFound
	}
	p, err := s.catalog.GetProductByHandle(ctx, handle, regionID)
	if err != nil {
		return nil, err
	}
	if variantID == "" && len(p.Variants) == 1 {
		variantID = p.Variants[0].ID
	}
	g := imagery.NewGallery(p, p.Variant(variantID), s.placeholder)
	g.Show(image)
	return &Detail{Product: p, VariantID: g.VariantID(), Images: g.Images(), Index: g.Index(), Current: g.Current()}, nil
}
