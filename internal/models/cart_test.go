package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func assertCartInvariant(t *testing.T, c *Cart) {
	t.Helper()
	sum := 0.0
	for _, item := range c.Items {
		if item.LineTotal != float64(item.Quantity)*item.UnitPrice {
			t.Fatalf("line total %v != quantity %d * unit price %v", item.LineTotal, item.Quantity, item.UnitPrice)
		}
		sum += item.LineTotal
	}
	if c.Subtotal != sum {
		t.Fatalf("subtotal %v != sum of line totals %v", c.Subtotal, sum)
	}
	if c.Total != c.Subtotal {
		t.Fatalf("total %v != subtotal %v", c.Total, c.Subtotal)
	}
}

func TestAddLineMergesIdenticalVariant(t *testing.T) {
	productID := primitive.NewObjectID()
	cart := &Cart{}

	cart.AddLine(CartItem{ProductID: productID, UnitPrice: 100, Quantity: 2})
	if len(cart.Items) != 1 || cart.Subtotal != 200 {
		t.Fatalf("expected one line with subtotal 200, got %d lines subtotal %v", len(cart.Items), cart.Subtotal)
	}

	cart.AddLine(CartItem{ProductID: productID, UnitPrice: 100, Quantity: 2})
	if len(cart.Items) != 1 {
		t.Fatalf("expected identical variants to merge into one line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 4 || cart.Subtotal != 400 {
		t.Fatalf("expected quantity 4 subtotal 400, got quantity %d subtotal %v", cart.Items[0].Quantity, cart.Subtotal)
	}
	assertCartInvariant(t, cart)
}

func TestAddLineKeepsDistinctVariantsApart(t *testing.T) {
	productID := primitive.NewObjectID()
	cart := &Cart{}

	cart.AddLine(CartItem{ProductID: productID, UnitPrice: 50, Quantity: 1, Variant: Variant{Size: "M"}})
	cart.AddLine(CartItem{ProductID: productID, UnitPrice: 50, Quantity: 1, Variant: Variant{Size: "L"}})
	cart.AddLine(CartItem{ProductID: productID, UnitPrice: 50, Quantity: 1})

	if len(cart.Items) != 3 {
		t.Fatalf("expected 3 separate lines for distinct variants, got %d", len(cart.Items))
	}
	assertCartInvariant(t, cart)
}

func TestSetLineQuantityRecomputesTotals(t *testing.T) {
	productID := primitive.NewObjectID()
	cart := &Cart{}
	cart.AddLine(CartItem{ProductID: productID, UnitPrice: 30, Quantity: 1, Variant: Variant{Color: "red"}})

	if !cart.SetLineQuantity(productID, Variant{Color: "red"}, 5) {
		t.Fatal("expected matching line to be updated")
	}
	if cart.Subtotal != 150 {
		t.Fatalf("expected subtotal 150, got %v", cart.Subtotal)
	}
	if cart.SetLineQuantity(productID, Variant{Color: "blue"}, 5) {
		t.Fatal("expected no match for different color")
	}
	assertCartInvariant(t, cart)
}

func TestRemoveLineMissingIsNoOp(t *testing.T) {
	productID := primitive.NewObjectID()
	cart := &Cart{}
	cart.AddLine(CartItem{ProductID: productID, UnitPrice: 10, Quantity: 2})

	if cart.RemoveLine(primitive.NewObjectID(), Variant{}) {
		t.Fatal("expected removing an absent line to report false")
	}
	if len(cart.Items) != 1 || cart.Subtotal != 20 {
		t.Fatalf("no-op removal must not corrupt totals: %d lines subtotal %v", len(cart.Items), cart.Subtotal)
	}

	if !cart.RemoveLine(productID, Variant{}) {
		t.Fatal("expected matching line to be removed")
	}
	if len(cart.Items) != 0 || cart.Subtotal != 0 || cart.Total != 0 {
		t.Fatalf("expected empty cart with zero totals, got %d lines subtotal %v", len(cart.Items), cart.Subtotal)
	}
	assertCartInvariant(t, cart)
}

func TestClearEmptiesInPlace(t *testing.T) {
	cart := &Cart{}
	cart.AddLine(CartItem{ProductID: primitive.NewObjectID(), UnitPrice: 99, Quantity: 3})

	cart.Clear()
	if !cart.IsEmpty() || cart.Subtotal != 0 || cart.Total != 0 {
		t.Fatalf("expected emptied cart, got %d lines subtotal %v total %v", len(cart.Items), cart.Subtotal, cart.Total)
	}
	if cart.Items == nil {
		t.Fatal("cleared cart keeps an empty item list, not nil")
	}
}

func TestCartInvariantHoldsAcrossMutationSequence(t *testing.T) {
	p1 := primitive.NewObjectID()
	p2 := primitive.NewObjectID()
	cart := &Cart{}

	cart.AddLine(CartItem{ProductID: p1, UnitPrice: 100, Quantity: 2})
	assertCartInvariant(t, cart)
	cart.AddLine(CartItem{ProductID: p2, UnitPrice: 49.5, Quantity: 1, Variant: Variant{Weight: "1kg"}})
	assertCartInvariant(t, cart)
	cart.SetLineQuantity(p2, Variant{Weight: "1kg"}, 4)
	assertCartInvariant(t, cart)
	cart.RemoveLine(p1, Variant{})
	assertCartInvariant(t, cart)
	cart.Clear()
	assertCartInvariant(t, cart)
}
