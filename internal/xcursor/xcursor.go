// Package xcursor creates X11 cursors from the standard cursor font.
//
// Glyph constants forked from https://github.com/BurntSushi/xgbutil/blob/master/xcursor/xcursor.go
package xcursor

import (
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const (
	XCursor           = 0
	Arrow             = 2
	BottomLeftCorner  = 12
	BottomRightCorner = 14
	BottomSide        = 16
	Crosshair         = 34
	Fleur             = 52
	Hand1             = 58
	Hand2             = 60
	LeftPtr           = 68
	LeftSide          = 70
	Plus              = 90
	QuestionArrow     = 92
	RightSide         = 96
	SBHDoubleArrow    = 108
	SBVDoubleArrow    = 116
	Sizing            = 120
	TopLeftArrow      = 132
	TopLeftCorner     = 134
	TopRightCorner    = 136
	TopSide           = 138
	Watch             = 150
	XTerm             = 152
)

// Glyphs maps cursor names to the closest cursor font glyph.
var Glyphs = map[string]uint16{
	"default":       LeftPtr,
	"crosshair":     Crosshair,
	"hand":          Hand2,
	"arrow":         TopLeftArrow,
	"move":          Fleur,
	"text":          XTerm,
	"wait":          Watch,
	"help":          QuestionArrow,
	"progress":      Watch,
	"not-allowed":   XCursor,
	"context-menu":  LeftPtr,
	"cell":          Plus,
	"vertical-text": XTerm,
	"alias":         LeftPtr,
	"copy":          LeftPtr,
	"no-drop":       XCursor,
	"grab":          Hand1,
	"grabbing":      Fleur,
	"all-scroll":    Fleur,
	"zoom-in":       Plus,
	"zoom-out":      Plus,
	"e-resize":      RightSide,
	"n-resize":      TopSide,
	"ne-resize":     TopRightCorner,
	"nw-resize":     TopLeftCorner,
	"s-resize":      BottomSide,
	"se-resize":     BottomRightCorner,
	"sw-resize":     BottomLeftCorner,
	"w-resize":      LeftSide,
	"ew-resize":     SBHDoubleArrow,
	"ns-resize":     SBVDoubleArrow,
	"nesw-resize":   Sizing,
	"nwse-resize":   Sizing,
	"col-resize":    SBHDoubleArrow,
	"row-resize":    SBVDoubleArrow,
}

// Glyph returns the glyph for name, falling back to the left pointer.
func Glyph(name string) uint16 {
	if glyph, ok := Glyphs[name]; ok {
		return glyph
	}
	return LeftPtr
}

func CreateCursor(x *xgb.Conn, cursor uint16) (xproto.Cursor, error) {
	return CreateCursorExtra(x, cursor, 0, 0, 0, 0xffff, 0xffff, 0xffff)
}

func CreateCursorExtra(x *xgb.Conn, cursor, foreRed, foreGreen,
	foreBlue, backRed, backGreen, backBlue uint16) (xproto.Cursor, error) {

	fontId, err := xproto.NewFontId(x)
	if err != nil {
		return 0, err
	}

	cursorId, err := xproto.NewCursorId(x)
	if err != nil {
		return 0, err
	}

	err = xproto.OpenFontChecked(x, fontId,
		uint16(len("cursor")), "cursor").Check()
	if err != nil {
		return 0, err
	}
	defer xproto.CloseFont(x, fontId)

	err = xproto.CreateGlyphCursorChecked(x, cursorId, fontId, fontId,
		cursor, cursor+1,
		foreRed, foreGreen, foreBlue,
		backRed, backGreen, backBlue).Check()
	if err != nil {
		return 0, err
	}

	return cursorId, nil
}

// CreateInvisible builds a cursor from an empty 1x1 bitmap.
func CreateInvisible(x *xgb.Conn, drawable xproto.Drawable) (xproto.Cursor, error) {
	pixmap, err := xproto.NewPixmapId(x)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreatePixmapChecked(x, 1, pixmap, drawable, 1, 1).Check(); err != nil {
		return 0, err
	}
	defer xproto.FreePixmap(x, pixmap)

	cursorId, err := xproto.NewCursorId(x)
	if err != nil {
		return 0, err
	}
	if err := xproto.CreateCursorChecked(x, cursorId, pixmap, pixmap,
		0, 0, 0, 0, 0, 0, 0, 0).Check(); err != nil {
		return 0, err
	}
	return cursorId, nil
}

func NewCache(x *xgb.Conn, drawable xproto.Drawable) *Cache {
	return &Cache{
		conn:     x,
		drawable: drawable,
		cursors:  make(map[uint16]xproto.Cursor),
	}
}

// Cache creates each glyph cursor once per connection.
type Cache struct {
	conn     *xgb.Conn
	drawable xproto.Drawable

	mu        sync.Mutex
	cursors   map[uint16]xproto.Cursor
	invisible xproto.Cursor
}

func (c *Cache) Named(name string) (xproto.Cursor, error) {
	glyph := Glyph(name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if cursor, ok := c.cursors[glyph]; ok {
		return cursor, nil
	}
	cursor, err := CreateCursor(c.conn, glyph)
	if err != nil {
		return 0, fmt.Errorf("failed to create cursor %q: %w", name, err)
	}
	c.cursors[glyph] = cursor
	return cursor, nil
}

func (c *Cache) Invisible() (xproto.Cursor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.invisible != 0 {
		return c.invisible, nil
	}
	cursor, err := CreateInvisible(c.conn, c.drawable)
	if err != nil {
		return 0, fmt.Errorf("failed to create invisible cursor: %w", err)
	}
	c.invisible = cursor
	return cursor, nil
}

// Free releases every cursor the cache created.
func (c *Cache) Free() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for glyph, cursor := range c.cursors {
		xproto.FreeCursor(c.conn, cursor)
		delete(c.cursors, glyph)
	}
	if c.invisible != 0 {
		xproto.FreeCursor(c.conn, c.invisible)
		c.invisible = 0
	}
}
