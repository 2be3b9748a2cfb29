package format

import "testing"

func TestCurrency(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"Default revenue", 129480, "$129,480"},
		{"Default profit", 110856, "$110,856"},
		{"Small amount", 8632, "$8,632"},
		{"Under a thousand", 999.4, "$999"},
		{"Half rounds away from zero", 2.5, "$3"},
		{"Millions", 1234567.89, "$1,234,568"},
		{"Zero", 0, "$0"},
		{"Negative", -1234.4, "-$1,234"},
		{"Negative half", -0.5, "-$1"},
		{"Negative rounding to zero keeps sign", -0.4, "-$0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Currency(tt.input); got != tt.expected {
				t.Errorf("Currency(%v) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCurrencyCents(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0.65, "$0.65"},
		{1250.5, "$1,250.50"},
		{41.5, "$41.50"},
		{-3.456, "-$3.46"},
	}

	for _, tt := range tests {
		if got := CurrencyCents(tt.input); got != tt.expected {
			t.Errorf("CurrencyCents(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{110856.0 / 129480.0 * 100, "85.6%"},
		{30, "30.0%"},
		{0, "0.0%"},
		{59.666357738646894, "59.7%"},
		{-12.34, "-12.3%"},
	}

	for _, tt := range tests {
		if got := Percent(tt.input); got != tt.expected {
			t.Errorf("Percent(%v) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

func TestNumber(t *testing.T) {
	tests := []struct {
		input    float64
		places   int32
		expected string
	}{
		{1.5, 2, "1.50"},
		{0.1, 2, "0.10"},
		{4, 2, "4.00"},
		{12480, 0, "12,480"},
	}

	for _, tt := range tests {
		if got := Number(tt.input, tt.places); got != tt.expected {
			t.Errorf("Number(%v, %d) = %q, expected %q", tt.input, tt.places, got, tt.expected)
		}
	}
}

// TestBinaryTies covers values whose decimal text sits on a tie but whose
// binary value falls just below it, as the browser's toFixed sees them.
func TestBinaryTies(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"0.15 stored below the tie", Percent(0.15), "0.1%"},
		{"1.45 stored below the tie", Percent(1.45), "1.4%"},
		{"Negative 0.15", Percent(-0.15), "-0.1%"},
		{"0.25 is an exact tie", Percent(0.25), "0.3%"},
		{"1.005 stored below the tie", Number(1.005, 2), "1.00"},
		{"2.675 stored below the tie", CurrencyCents(2.675), "$2.67"},
		{"Exact half dollar", Currency(0.5), "$1"},
		{"Large whole value", Currency(1 << 60), "$1,152,921,504,606,846,976"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.expected {
				t.Errorf("got %q, expected %q", tt.got, tt.expected)
			}
		})
	}
}
