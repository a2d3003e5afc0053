package handlers

import "testing"

func TestComputeDeliveryCharge(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    float64
	}{
		{"plain metro district", "Dhaka", MetroDeliveryCharge},
		{"metro inside longer address", "House 7, Road 3, Dhanmondi, Dhaka-1205", MetroDeliveryCharge},
		{"uppercase", "DHAKA", MetroDeliveryCharge},
		{"surrounding whitespace", "  dhaka  ", MetroDeliveryCharge},
		{"bengali script alias", "মিরপুর, ঢাকা", MetroDeliveryCharge},
		{"other district", "Chattogram", StandardDeliveryCharge},
		{"empty", "", StandardDeliveryCharge},
		{"whitespace only", "   ", StandardDeliveryCharge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeDeliveryCharge(tt.address); got != tt.want {
				t.Fatalf("ComputeDeliveryCharge(%q) = %v, want %v", tt.address, got, tt.want)
			}
		})
	}
}

func TestComputeDeliveryChargeIsDeterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		if got := ComputeDeliveryCharge("Dhaka"); got != MetroDeliveryCharge {
			t.Fatalf("run %d: got %v", i, got)
		}
		if got := ComputeDeliveryCharge("Sylhet"); got != StandardDeliveryCharge {
			t.Fatalf("run %d: got %v", i, got)
		}
	}
}
