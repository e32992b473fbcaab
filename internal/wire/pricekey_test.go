package wire

import "testing"

func TestNewPriceKey(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name      string
		price     float64
		precision int
		want      PriceKey
	}{
		{"two decimals", 43210.12, 2, 4321012},
		{"no fractional drift", 10.0, 2, 1000},
		{"rounds nearest", 0.123456, 4, 1235},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := NewPriceKey(tt.price, tt.precision)
			if got != tt.want {
				t.Errorf("NewPriceKey(%v, %d) = %v, want %v", tt.price, tt.precision, got, tt.want)
			}
		})
	}
}

func TestPriceKeyFloatRoundTrip(t *testing.T) {
	t.Parallel()
	k := NewPriceKey(43210.12, 2)
	if got := k.Float(2); got != 43210.12 {
		t.Errorf("Float() = %v, want 43210.12", got)
	}
}

func TestPriceKeyEqualityIgnoresFloatNoise(t *testing.T) {
	t.Parallel()
	a := NewPriceKey(10.0, 2)
	b := NewPriceKey(10.000000001, 2)
	if a != b {
		t.Errorf("PriceKey should collapse float noise within precision: %v != %v", a, b)
	}
}
