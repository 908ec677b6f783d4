package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
	}{
		{"hello", 10},
		{"hello world", 5},
		{"分支名称很长", 6},
		{"anything", 0},
	}
	for _, tc := range tests {
		got := Truncate(tc.in, tc.width)
		if w := ansi.StringWidth(got); w > tc.width {
			t.Errorf("Truncate(%q, %d) = %q, width %d", tc.in, tc.width, got, w)
		}
	}
	if got := Truncate("hello", 10); got != "hello" {
		t.Errorf("Truncate kept-short = %q, want hello", got)
	}
	if got := Truncate("hello world", 5); !strings.HasSuffix(got, "…") {
		t.Errorf("Truncate(hello world, 5) = %q, want ellipsis", got)
	}
}

func TestDiffLineKeepsText(t *testing.T) {
	for _, line := range []string{"+added", "-removed", "@@ -1 +1 @@", "--- a/x", " context", ""} {
		if got := ansi.Strip(DiffLine(line)); got != line {
			t.Errorf("DiffLine(%q) text = %q", line, got)
		}
	}
}

func TestApplyName(t *testing.T) {
	t.Cleanup(func() { Apply(Dark) })

	if !ApplyName("light") {
		t.Fatal("ApplyName(light) = false")
	}
	if Current().Name != "light" {
		t.Errorf("Current() = %q, want light", Current().Name)
	}
	if got := PanelActive.GetBorderTopForeground(); got != Light.Colors.Primary {
		t.Errorf("active border = %v, want %v", got, Light.Colors.Primary)
	}

	if ApplyName("solarized") {
		t.Error("ApplyName(solarized) = true for an unknown theme")
	}
	if Current().Name != "dark" {
		t.Errorf("unknown theme applied %q, want dark fallback", Current().Name)
	}
}

func TestThemeNames(t *testing.T) {
	names := ThemeNames()
	if strings.Join(names, ",") != "dark,light" {
		t.Errorf("ThemeNames() = %v", names)
	}
}
