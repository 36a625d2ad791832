package theme

import "testing"

func TestByName(t *testing.T) {
	if got := ByName("catppuccin-mocha"); got.Name != "catppuccin-mocha" {
		t.Fatalf("ByName = %q, want catppuccin-mocha", got.Name)
	}
	if got := ByName("no-such-theme"); got.Name != FlexokiDark.Name {
		t.Fatalf("ByName(unknown) = %q, want %q", got.Name, FlexokiDark.Name)
	}

	defer SetActive(FlexokiDark.Name)
	SetActive("terminal")
	if Active.Name != "terminal" {
		t.Fatalf("Active = %q after SetActive(terminal)", Active.Name)
	}
}

func TestForShare(t *testing.T) {
	th := FlexokiDark
	tests := []struct {
		share float64
		want  string
	}{
		{1, string(th.Green)},
		{0.5, string(th.Green)},
		{0.3, string(th.Yellow)},
		{0.15, string(th.Orange)},
		{0.1, string(th.Red)},
		{-1, string(th.Red)},
	}
	for _, tt := range tests {
		if got := string(th.ForShare(tt.share)); got != tt.want {
			t.Errorf("ForShare(%v) = %s, want %s", tt.share, got, tt.want)
		}
	}
}
