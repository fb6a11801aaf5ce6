package label

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"22 K", "22k"},
		{"22-k", "22k"},
		{"22k", "22k"},
		{"  Emas 24 Karat\t", "emas24karat"},
		{"Logam-Mulia  K24", "logammuliak24"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := Normalize(got); again != got {
				t.Errorf("Normalize is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIndex_Lookup(t *testing.T) {
	idx := NewIndex([]Row{
		{Label: "24 K", Price: 1200000},
		{Label: "22-K", Price: 1100000},
		{Label: "24k", Price: 1},
		{Label: " ", Price: 5},
	})

	if idx.Len() != 2 {
		t.Errorf("Len() = %d, want 2", idx.Len())
	}

	tests := []struct {
		label string
		want  int64
		found bool
	}{
		{"24K", 1200000, true},
		{"22 k", 1100000, true},
		{"18K", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := idx.Lookup(tt.label)
			if !tt.found {
				if got != nil {
					t.Errorf("Lookup(%q) = %d, want nil", tt.label, *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Errorf("Lookup(%q) = %v, want %d", tt.label, got, tt.want)
			}
		})
	}
}

func TestIndex_NilSafe(t *testing.T) {
	var idx *Index
	if idx.Lookup("24K") != nil {
		t.Error("nil index returned a price")
	}
	if idx.Len() != 0 {
		t.Error("nil index has entries")
	}
}
