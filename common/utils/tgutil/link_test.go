package tgutil

import "testing"

func TestMessageLink(t *testing.T) {
	tests := []struct {
		channel string
		id      int64
		want    string
	}{
		{"@deals", 15, "https://t.me/deals/15"},
		{"deals", 15, "https://t.me/deals/15"},
		{"-1001234567", 3, "https://t.me/c/1234567/3"},
	}
	for _, tt := range tests {
		if got := MessageLink(tt.channel, tt.id); got != tt.want {
			t.Fatalf("MessageLink(%q, %d) = %q, want %q", tt.channel, tt.id, got, tt.want)
		}
	}
}

func TestNormalizeChannel(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"@deals", "@deals", true},
		{"deals", "@deals", true},
		{"t.me/deals", "@deals", true},
		{"https://t.me/deals/42", "@deals", true},
		{"-1001234567", "-1001234567", true},
		{"https://t.me/+AbCdEf", "", false},
		{"bad name", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizeChannel(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("NormalizeChannel(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
