package lang

import "testing"

func TestCodes_RegistryOrder(t *testing.T) {
	codes := Codes()
	want := []string{"en", "zh-CN", "zh-TW"}
	if len(codes) != len(want) {
		t.Fatalf("expected %d codes, got %d", len(want), len(codes))
	}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("codes[%d] = %q, want %q", i, codes[i], want[i])
		}
	}
	if Count() != 3 {
		t.Errorf("Count() = %d, want 3", Count())
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"en", "en", true},
		{"zh-CN", "zh-CN", true},
		{"zh-cn", "zh-CN", true},
		{"zh_TW", "zh-TW", true},
		{"fr", "", false},
		{"not a tag!", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			l, ok := Lookup(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("Lookup(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && l.Code != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.in, l.Code, tt.want)
			}
		})
	}
}
