package locale

import "testing"

func TestFindCountry(t *testing.T) {
	tests := []struct {
		input    string
		wantCode string
		wantOK   bool
	}{
		{"PT", "PT", true},
		{"pt", "PT", true},
		{"  Portugal ", "PT", true},
		{"united kingdom", "GB", true},
		{"UK", "GB", true},
		{"American", "US", true},
		{"Atlantis", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			c, ok := FindCountry(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("FindCountry(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if c.Code != tt.wantCode {
				t.Errorf("FindCountry(%q) = %q, want %q", tt.input, c.Code, tt.wantCode)
			}
		})
	}
}

func TestFlag(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{"PT", "🇵🇹"},
		{"us", "🇺🇸"},
		{"GB", "🇬🇧"},
		{"USA", ""},
		{"1A", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Flag(tt.code); got != tt.want {
			t.Errorf("Flag(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
