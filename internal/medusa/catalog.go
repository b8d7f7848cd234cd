package medusa

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront/internal/domain"
)

const productFields = "*variants,*variants.calculated_price,*variants.images,+variants.inventory_quantity,*images"

// ProductQuery filters a product listing.
type ProductQuery struct {
	IDs      []string
	Handle   string
	RegionID string
	Limit    int
	Offset   int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{"fields": {productFields}}
	for _, id := range q.IDs {
		v.Add("id[]", id)
	}
	if q.Handle != "" {
		v.Set("handle", q.Handle)
	}
	if q.RegionID != "" {
		v.Set("region_id", q.RegionID)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}
	return v
}

// ProductPage is one page of a product listing.
type ProductPage struct {
	Products []domain.Product `json:"products"`
	Count    int              `json:"count"`
	Limit    int              `json:"limit"`
	Offset   int              `json:"offset"`
}

func (c *Client) ListProducts(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	var page ProductPage
	if err := c.t.do(ctx, http.MethodGet, "/store/products", q.values(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListProductsByIDs bulk-fetches products in one call.
func (c *Client) ListProductsByIDs(ctx context.Context, ids []string) ([]domain.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	page, err := c.ListProducts(ctx, ProductQuery{IDs: ids, Limit: len(ids)})
	if err != nil {
		return nil, err
	}
	return page.Products, nil
}

func (c *Client) GetProductByHandle(ctx context.Context, handle, regionID string) (*domain.Product, error) {
	page, err := c.ListProducts(ctx, ProductQuery{Handle: handle, RegionID: regionID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(page.Products) == 0 {
		return nil, domain.ErrNotFound
	}
	return &page.Products[0], nil
}

func (c *Client) ListRegions(ctx context.Context) ([]domain.Region, error) {
	var env struct {
		Regions []domain.Region `json:"regions"`
	}
	q := url.Values{"fields": {"*countries"}}
	if err := c.t.do(ctx, http.MethodGet, "/store/regions", q, nil, &env); err != nil {
		return nil, err
	}
	return env.Regions, nil
}
