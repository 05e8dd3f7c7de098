package histfilter

import "testing"

func TestMatches(t *testing.T) {
	tests := []struct {
		name   string
		term   string
		fields []string
		want   bool
	}{
		{"case-insensitive substring", "smith", []string{"John Smith", "OP1001", "RA"}, true},
		{"no match", "smith", []string{"Jane Doe", "OP1002", "SLE"}, false},
		{"matches op no", "op10", []string{"Jane Doe", "OP1002", "SLE"}, true},
		{"matches diagnosis", "lupus", []string{"Jane Doe", "OP1002", "Lupus nephritis"}, true},
		{"empty term matches all", "", []string{"Jane Doe"}, true},
		{"whitespace-only term matches all", "   ", []string{"Jane Doe"}, true},
		{"term longer than fields", "john smithington", []string{"John Smith"}, false},
		{"uppercase term", "SMITH", []string{"john smith"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.term, tt.fields...); got != tt.want {
				t.Errorf("Matches(%q, %v) = %v, want %v", tt.term, tt.fields, got, tt.want)
			}
		})
	}
}
