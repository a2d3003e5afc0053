package handlers

import "errors"

var (
	errSalePriceRequired      = errors.New("salePrice is required when saleEnabled is true")
	errSalePriceNonPositive   = errors.New("salePrice must be greater than 0")
	errSalePriceNotBelowPrice = errors.New("salePrice must be less than price")
)

// salePatch carries the price and sale fields of a partial product update.
// Nil means the field was absent from the request body.
type salePatch struct {
	Price       *float64
	SaleEnabled *bool
	SalePrice   *float64
}

// resolvedSale is the validated outcome of applying a salePatch on top of the
// stored product. SetSaleEnabled/SetSalePrice mark which fields the update
// document must carry; disabling a sale also zeroes the stored sale price.
type resolvedSale struct {
	Price          float64
	SaleEnabled    bool
	SalePrice      float64
	SetSaleEnabled bool
	SetSalePrice   bool
}

// isProductOnSale is the single definition of an active discount: the sale
// must be switched on and the sale price must genuinely undercut the list
// price. A sale price of 0 means "not set".
func isProductOnSale(price float64, saleEnabled bool, salePrice float64) bool {
	return saleEnabled && salePrice > 0 && salePrice < price
}

// effectiveProductPrice is the price the shop actually charges, used when
// freezing cart lines. Catalog responses expose both prices; money movement
// only ever uses this one.
func effectiveProductPrice(price float64, saleEnabled bool, salePrice float64) float64 {
	if isProductOnSale(price, saleEnabled, salePrice) {
		return salePrice
	}
	return price
}

// validateSaleFields rejects sale states that would never discount anything.
// Only enabled sales are checked; a disabled sale may keep any stored price.
func validateSaleFields(price float64, saleEnabled bool, salePrice float64, salePriceSet bool) error {
	if !saleEnabled {
		return nil
	}
	switch {
	case !salePriceSet:
		return errSalePriceRequired
	case salePrice <= 0:
		return errSalePriceNonPositive
	case salePrice >= price:
		return errSalePriceNotBelowPrice
	}
	return nil
}

// resolveSalePatch merges a partial edit with the stored product and
// validates the combined state, so a patch touching only one of the three
// fields cannot leave the product with an invalid sale.
func resolveSalePatch(existingPrice float64, existingSaleEnabled bool, existingSalePrice float64, patch salePatch) (resolvedSale, error) {
	merged := resolvedSale{
		Price:       existingPrice,
		SaleEnabled: existingSaleEnabled,
		SalePrice:   existingSalePrice,
	}

	if patch.Price != nil {
		merged.Price = *patch.Price
	}

	salePriceSet := existingSalePrice > 0

	if patch.SaleEnabled != nil {
		merged.SaleEnabled = *patch.SaleEnabled
		merged.SetSaleEnabled = true
		if !*patch.SaleEnabled {
			merged.SalePrice = 0
			merged.SetSalePrice = true
			salePriceSet = false
		}
	}

	if patch.SalePrice != nil {
		merged.SalePrice = *patch.SalePrice
		merged.SetSalePrice = true
		salePriceSet = true
	}

	if err := validateSaleFields(merged.Price, merged.SaleEnabled, merged.SalePrice, salePriceSet); err != nil {
		return resolvedSale{}, err
	}

	return merged, nil
}
