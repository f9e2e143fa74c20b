package config

import "testing"

func TestNormalizeBaseURL(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://backend.example.com/api", "https://backend.example.com/api"},
		{"https://backend.example.com/api/", "https://backend.example.com/api"},
		{"https://backend.example.com", "https://backend.example.com/api"},
		{"https://backend.example.com/", "https://backend.example.com/api"},
		{"https://backend.example.com/API", "https://backend.example.com/API"},
		{"http://localhost:7001", "http://localhost:7001/api"},
	}
	for _, tt := range tests {
		if got := NormalizeBaseURL(tt.raw); got != tt.want {
			t.Errorf("NormalizeBaseURL(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins("http://localhost:5173, https://admin.example.com ,")
	want := []string{"http://localhost:5173", "https://admin.example.com"}
	if len(got) != len(want) {
		t.Fatalf("splitOrigins = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("origin[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
