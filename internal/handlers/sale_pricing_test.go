package handlers

import (
	"encoding/json"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestValidateSaleFields(t *testing.T) {
	tests := []struct {
		name         string
		price        float64
		saleEnabled  bool
		salePrice    float64
		salePriceSet bool
		wantErr      error
	}{
		{"disabled sale ignores stored price", 100, false, 500, true, nil},
		{"valid discount", 100, true, 80, true, nil},
		{"missing sale price", 100, true, 0, false, errSalePriceRequired},
		{"zero sale price", 100, true, 0, true, errSalePriceNonPositive},
		{"sale price equals price", 100, true, 100, true, errSalePriceNotBelowPrice},
		{"sale price above price", 100, true, 120, true, errSalePriceNotBelowPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSaleFields(tt.price, tt.saleEnabled, tt.salePrice, tt.salePriceSet)
			if err != tt.wantErr {
				t.Fatalf("validateSaleFields = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolveSalePatchMergesWithStoredProduct(t *testing.T) {
	price := 90.0
	sale, err := resolveSalePatch(100, true, 80, salePatch{SalePrice: &price})
	if err != nil {
		t.Fatalf("resolveSalePatch returned error: %v", err)
	}
	if sale.SalePrice != 90 || !sale.SetSalePrice {
		t.Fatalf("expected sale price 90 to be set, got %+v", sale)
	}
	if sale.SetSaleEnabled {
		t.Fatal("saleEnabled was not patched and must not be written")
	}
}

func TestResolveSalePatchDisableClearsSalePrice(t *testing.T) {
	disabled := false
	sale, err := resolveSalePatch(100, true, 80, salePatch{SaleEnabled: &disabled})
	if err != nil {
		t.Fatalf("resolveSalePatch returned error: %v", err)
	}
	if sale.SaleEnabled || sale.SalePrice != 0 {
		t.Fatalf("disabling must clear the sale price, got %+v", sale)
	}
	if !sale.SetSaleEnabled || !sale.SetSalePrice {
		t.Fatalf("both fields must be written on disable, got %+v", sale)
	}
}

func TestResolveSalePatchRejectsInvalidCombination(t *testing.T) {
	// Lowering the list price below the stored sale price invalidates the
	// still-enabled sale.
	price := 70.0
	if _, err := resolveSalePatch(100, true, 80, salePatch{Price: &price}); err != errSalePriceNotBelowPrice {
		t.Fatalf("expected %v, got %v", errSalePriceNotBelowPrice, err)
	}

	enabled := true
	if _, err := resolveSalePatch(100, false, 0, salePatch{SaleEnabled: &enabled}); err != errSalePriceRequired {
		t.Fatalf("expected %v, got %v", errSalePriceRequired, err)
	}
}

func TestNormalizeProductDocumentIncludesSaleFields(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "Test",
		"price":       100.0,
		"saleEnabled": true,
		"salePrice":   80.0,
		"stock":       5,
		"category":    []string{"Cat"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}
	if !product.SaleEnabled || product.SalePrice != 80 {
		t.Fatalf("expected sale fields to be preserved, got saleEnabled=%v salePrice=%v", product.SaleEnabled, product.SalePrice)
	}
	if !product.IsOnSale {
		t.Fatal("expected IsOnSale to be true")
	}
}

func TestProductJSONAlwaysIncludesSalePrice(t *testing.T) {
	product, err := normalizeProductDocument(bson.M{
		"name":        "Test",
		"price":       120.0,
		"saleEnabled": true,
		"salePrice":   99.0,
		"stock":       10,
		"category":    []string{"Fruit"},
	})
	if err != nil {
		t.Fatalf("normalizeProductDocument returned error: %v", err)
	}

	body, err := json.Marshal(product)
	if err != nil {
		t.Fatalf("json marshal failed: %v", err)
	}

	jsonBody := string(body)
	if !strings.Contains(jsonBody, "\"salePrice\":99") {
		t.Fatalf("expected salePrice in response json, got %s", jsonBody)
	}
	if !strings.Contains(jsonBody, "\"isOnSale\":true") {
		t.Fatalf("expected isOnSale=true in response json, got %s", jsonBody)
	}
}

func TestEffectiveProductPrice(t *testing.T) {
	if got := effectiveProductPrice(100, true, 75); got != 75 {
		t.Fatalf("expected sale price 75, got %v", got)
	}
	if got := effectiveProductPrice(100, false, 75); got != 100 {
		t.Fatalf("expected regular price 100 when sale disabled, got %v", got)
	}
	// A "sale" that does not undercut the list price never changes what is
	// charged.
	if got := effectiveProductPrice(100, true, 100); got != 100 {
		t.Fatalf("expected regular price when sale price equals price, got %v", got)
	}
}
