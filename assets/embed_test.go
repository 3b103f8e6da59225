package assets

import (
	"strings"
	"testing"
)

func TestEmbeddedText(t *testing.T) {
	if !strings.Contains(AboutText, "base frame") {
		t.Fatalf("about text missing: %q", AboutText)
	}
	sc := Shortcuts()
	if len(sc) != 8 {
		t.Fatalf("expected 8 shortcuts, got %d", len(sc))
	}
	if sc[0][0] != "Space" || sc[0][1] != "capture base frame" {
		t.Fatalf("first shortcut %v", sc[0])
	}
}
