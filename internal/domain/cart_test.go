package domain

import (
	"reflect"
	"testing"
)

func TestCartItemCountAndProductIDs(t *testing.T) {
	cart := &Cart{Items: []LineItem{
		{ID: "l1", ProductID: "p1", Quantity: 2},
		{ID: "l2", ProductID: "p2", Quantity: 1},
		{ID: "l3", ProductID: "p1", Quantity: 3},
	}}
	if got := cart.ItemCount(); got != 6 {
		t.Fatalf("expected 6 items, got %d", got)
	}
	if got := cart.ProductIDs(); !reflect.DeepEqual(got, []string{"p1", "p2"}) {
		t.Fatalf("unexpected product ids %v", got)
	}
	var nilCart *Cart
	if nilCart.ItemCount() != 0 || nilCart.HasPromotions() {
		t.Fatalf("nil cart should be empty")
	}
}

func TestCartPromotionCodesSkipsAutomatic(t *testing.T) {
	cart := &Cart{Promotions: []Promotion{{ID: "a", Code: "SAVE10"}, {ID: "auto"}}}
	if !cart.HasPromotions() {
		t.Fatalf("expected promotions")
	}
	if got := cart.PromotionCodes(); !reflect.DeepEqual(got, []string{"SAVE10"}) {
		t.Fatalf("unexpected codes %v", got)
	}
}

func TestCustomerCollectedCoupons(t *testing.T) {
	c := &Customer{Metadata: map[string]interface{}{
		CouponsMetadataKey: []interface{}{"save10", " save10 ", "SAVE10", "", "vip", 42},
	}}
	if got := c.CollectedCoupons(); !reflect.DeepEqual(got, []string{"save10", "SAVE10", "vip"}) {
		t.Fatalf("unexpected coupons %v", got)
	}

	legacy := &Customer{Metadata: map[string]interface{}{CouponsMetadataKey: "a, b"}}
	if got := legacy.CollectedCoupons(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected legacy coupons %v", got)
	}
}

func TestCustomerWithCoupon(t *testing.T) {
	c := &Customer{Metadata: map[string]interface{}{"newsletter": true, CouponsMetadataKey: []interface{}{"VIP"}}}

	meta, added := c.WithCoupon(" welcome ")
	if !added {
		t.Fatalf("expected code to be added")
	}
	if meta["newsletter"] != true {
		t.Fatalf("other metadata lost: %v", meta)
	}
	if got := meta[CouponsMetadataKey]; !reflect.DeepEqual(got, []string{"VIP", "welcome"}) {
		t.Fatalf("unexpected list %v", got)
	}

	_, added = c.WithCoupon(" VIP")
	if added {
		t.Fatalf("duplicate code should not be added")
	}
	if len(c.Metadata[CouponsMetadataKey].([]interface{})) != 1 {
		t.Fatalf("original metadata mutated")
	}
}
