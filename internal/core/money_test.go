package core

import "testing"

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"simple integer", "12", 1200, false},
		{"dot decimal", "12.34", 1234, false},
		{"comma decimal", "12,34", 1234, false},
		{"single fractional digit", "12.3", 1230, false},
		{"third decimal rounds down", "12.344", 1234, false},
		{"third decimal rounds up", "12.345", 1235, false},
		{"leading dot", ".50", 50, false},
		{"surrounding whitespace", "  99  ", 9900, false},
		{"large amount", "5000000", 500000000, false},
		{"empty", "", 0, true},
		{"whitespace only", "   ", 0, true},
		{"zero", "0", 0, true},
		{"zero decimal", "0.00", 0, true},
		{"negative", "-5", 0, true},
		{"explicit plus", "+5", 0, true},
		{"not a number", "abc", 0, true},
		{"two separators", "1.2.3", 0, true},
		{"trailing junk", "12x", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) expected error, got %d paise", tt.input, got.Paise)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			if got.Paise != tt.want {
				t.Errorf("ParseAmount(%q) = %d paise, want %d", tt.input, got.Paise, tt.want)
			}
		})
	}
}

func TestCoerceAmount(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int64
	}{
		{"valid integer", "1000", 100000},
		{"valid decimal", "10.50", 1050},
		{"comma separator", "10,50", 1050},
		{"blank contributes zero", "", 0},
		{"whitespace contributes zero", "  ", 0},
		{"garbage contributes zero", "abc", 0},
		{"partial number contributes zero", "12abc", 0},
		{"negative clamps to zero", "-100", 0},
		{"zero stays zero", "0", 0},
		{"overflowing amount contributes zero", "100000000000000000", 0},
		{"huge exponent contributes zero", "1e300", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CoerceAmount(tt.input); got.Paise != tt.want {
				t.Errorf("CoerceAmount(%q) = %d paise, want %d", tt.input, got.Paise, tt.want)
			}
		})
	}
}

func TestFormatINR(t *testing.T) {
	tests := []struct {
		name string
		in   Money
		want string
	}{
		{"zero", Money{}, "₹0"},
		{"under a thousand", FromRupees(950), "₹950"},
		{"thousand", FromRupees(1000), "₹1,000"},
		{"lakh", FromRupees(100000), "₹1,00,000"},
		{"seventy five lakh", FromRupees(7500000), "₹75,00,000"},
		{"crore", FromRupees(10000000), "₹1,00,00,000"},
		{"odd grouping", FromRupees(1234567), "₹12,34,567"},
		{"with paise", Money{Paise: 123456}, "₹1,234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatINR(tt.in); got != tt.want {
				t.Errorf("FormatINR(%d paise) = %q, want %q", tt.in.Paise, got, tt.want)
			}
		})
	}
}
