package httpserver

import (
	"context"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	couponsvc "storefront/internal/service/coupon"
)

type lineItemView struct {
	domain.LineItem
	Image string `json:"image,omitempty"`
}

type cartView struct {
	*domain.Cart
	Items     []lineItemView `json:"items"`
	ItemCount int            `json:"item_count"`
}

type orderView struct {
	*domain.Order
	Items []lineItemView `json:"items"`
}

type autoCouponView struct {
	Code     string          `json:"code"`
	Discount decimal.Decimal `json:"discount"`
}

type cartResponse struct {
	Cart       cartView                  `json:"cart"`
	Shipping   *domain.ShippingSelection `json:"shipping_selection,omitempty"`
	AutoCoupon *autoCouponView           `json:"auto_coupon,omitempty"`
}

func (h *api) lineItems(ctx context.Context, items []domain.LineItem) []lineItemView {
	images := h.deps.Images.Map(ctx, items)
	out := make([]lineItemView, 0, len(items))
	for _, item := range items {
		out = append(out, lineItemView{LineItem: item, Image: images.For(item)})
	}
	return out
}

func (h *api) cartView(ctx context.Context, cart *domain.Cart) cartView {
	return cartView{Cart: cart, Items: h.lineItems(ctx, cart.Items), ItemCount: cart.ItemCount()}
}

func (h *api) orderView(ctx context.Context, order *domain.Order) orderView {
	return orderView{Order: order, Items: h.lineItems(ctx, order.Items)}
}

func autoCoupon(res couponsvc.Result) *autoCouponView {
	if !res.Applied() {
		return nil
	}
	return &autoCouponView{Code: res.Code, Discount: res.Discount}
}
