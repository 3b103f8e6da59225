package assets

import (
	_ "embed"
	"strings"
)

// AboutText is shown in the info dialog.
//
//go:embed about.txt
var AboutText string

//go:embed shortcuts.txt
var shortcutsTSV string

// Shortcuts returns the keyboard shortcut table as (keys, description) pairs.
func Shortcuts() [][2]string {
	var out [][2]string
	for _, line := range strings.Split(strings.TrimSpace(shortcutsTSV), "\n") {
		key, desc, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		out = append(out, [2]string{strings.TrimSpace(key), strings.TrimSpace(desc)})
	}
	return out
}
