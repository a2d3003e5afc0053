package handlers

import "strings"

const (
	// MetroDeliveryCharge applies to addresses inside the Dhaka metro area.
	MetroDeliveryCharge = 60.0
	// StandardDeliveryCharge applies everywhere else, and when the address is
	// empty or unparseable.
	StandardDeliveryCharge = 120.0
)

// metroAliases are the district name spellings that map to the metro rate.
// The Bengali-script alias covers addresses entered in the local script.
var metroAliases = []string{
	"dhaka",
	"ঢাকা",
}

// ComputeDeliveryCharge maps a free-text delivery address to a flat delivery
// fee. Total over all inputs; the standard rate is the safe fallback.
func ComputeDeliveryCharge(address string) float64 {
	normalized := strings.ToLower(strings.TrimSpace(address))
	if normalized == "" {
		return StandardDeliveryCharge
	}

	for _, alias := range metroAliases {
		if strings.Contains(normalized, alias) {
			return MetroDeliveryCharge
		}
	}
	return StandardDeliveryCharge
}
