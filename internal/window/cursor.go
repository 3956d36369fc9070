package window

import (
	"slices"
	"strings"
)

// Cursor names that hide the pointer.
const (
	CursorNone = "none"
	CursorHide = "hide"
)

// Cursors is the icon vocabulary a host may select.
var Cursors = []string{
	"default", "crosshair", "hand", "arrow", "move", "text", "wait", "help",
	"progress", "not-allowed", "context-menu", "cell", "vertical-text", "alias",
	"copy", "no-drop", "grab", "grabbing", "all-scroll", "zoom-in", "zoom-out",
	"e-resize", "n-resize", "ne-resize", "nw-resize", "s-resize", "se-resize",
	"sw-resize", "w-resize", "ew-resize", "ns-resize", "nesw-resize",
	"nwse-resize", "col-resize", "row-resize",
}

// ParseCursor resolves a cursor name. A nil icon with ok set means hidden.
func ParseCursor(name string) (icon *string, ok bool) {
	name = strings.ToLower(name)
	switch {
	case name == CursorNone || name == CursorHide:
		return nil, true
	case slices.Contains(Cursors, name):
		return &name, true
	default:
		return nil, false
	}
}
