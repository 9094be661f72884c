package domain

import "testing"

func TestNewSearchQuery(t *testing.T) {
	q := NewSearchQuery("  lo-fi beats \n", 2)

	if q.Text != "lo-fi beats" {
		t.Errorf("expected trimmed text %q, got %q", "lo-fi beats", q.Text)
	}
	if q.Page != 2 {
		t.Errorf("expected page 2, got %d", q.Page)
	}
}

func TestSearchQuery_IsValid(t *testing.T) {
	tests := []struct {
		name  string
		query SearchQuery
		want  bool
	}{
		{name: "text and first page", query: NewSearchQuery("song", 1), want: true},
		{name: "later page", query: NewSearchQuery("song", 7), want: true},
		{name: "blank text", query: NewSearchQuery("   ", 1), want: false},
		{name: "page zero", query: NewSearchQuery("song", 0), want: false},
		{name: "negative page", query: NewSearchQuery("song", -1), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.query.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
