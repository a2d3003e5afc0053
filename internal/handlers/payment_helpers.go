package handlers

import (
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"backend/internal/models"
	"backend/internal/sslcommerz"
)

// amountTolerance absorbs rounding differences between the gateway's decimal
// strings and the stored float amounts.
const amountTolerance = 0.01

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// matchesPayable checks the validator-reported amount against the order's
// payable amount. The validator reports both the requested amount and the
// store-currency amount; either matching is accepted.
func matchesPayable(v sslcommerz.ValidationResponse, payable float64) bool {
	if amount, ok := parseAmount(v.Amount); ok && math.Abs(amount-payable) <= amountTolerance {
		return true
	}
	if amount, ok := parseAmount(v.CurrencyAmount); ok && math.Abs(amount-payable) <= amountTolerance {
		return true
	}
	return false
}

// settlementMatchesOrder reports whether the validator response confirms a
// settled payment for this exact order: gateway-confirmed status, matching
// transaction identity and matching amount. The identity check matters: a
// val_id is valid on its own, so one captured from another order's checkout
// would otherwise settle any order with the same payable.
func settlementMatchesOrder(v sslcommerz.ValidationResponse, order models.Order) bool {
	return v.Settled() && v.TranID == order.OrderID && matchesPayable(v, order.PayableAmount())
}

// callbackPayload captures the raw gateway form fields as an opaque map. The
// core never interprets these beyond tran_id/val_id; they are stored as-is.
func callbackPayload(c *gin.Context) map[string]string {
	if err := c.Request.ParseForm(); err != nil {
		return map[string]string{}
	}
	payload := make(map[string]string, len(c.Request.PostForm))
	for key, values := range c.Request.PostForm {
		if len(values) > 0 {
			payload[key] = values[0]
		}
	}
	return payload
}
