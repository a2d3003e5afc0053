package handlers

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Hello World", "hello-world"},
		{"  Summer Sale 2026!  ", "summer-sale-2026"},
		{"a--b__c", "a-b-c"},
		{"---", ""},
		{"Café au lait", "caf-au-lait"},
	}

	for _, tt := range tests {
		if got := slugify(tt.in); got != tt.want {
			t.Errorf("slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
