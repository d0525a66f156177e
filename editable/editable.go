// Package editable provides the script-facing views of open documents.
// Wrappers are thin and computed on access; scripts never hold the
// underlying document data directly.
package editable

import (
	"mapstudio/document"
	"mapstudio/typedef"
)

// EditableMap is the script-facing view of an open map document.
type EditableMap struct {
	doc *document.MapDocument
}

// NewEditableMap wraps a map document.
func NewEditableMap(doc *document.MapDocument) *EditableMap {
	if doc == nil {
		return nil
	}
	return &EditableMap{doc: doc}
}

// Document returns the underlying document.
func (m *EditableMap) Document() *document.MapDocument { return m.doc }

func (m *EditableMap) FileName() string { return m.doc.FileName }

func (m *EditableMap) Width() int { return m.doc.Map.Width }

func (m *EditableMap) Height() int { return m.doc.Map.Height }

func (m *EditableMap) TileWidth() int { return m.doc.Map.TileWidth }

func (m *EditableMap) TileHeight() int { return m.doc.Map.TileHeight }

func (m *EditableMap) LayerCount() int { return len(m.doc.Map.Layers) }

// LayerName returns the name of the layer at the given index, or the empty
// string when out of range.
func (m *EditableMap) LayerName(index int) string {
	if index < 0 || index >= len(m.doc.Map.Layers) {
		return ""
	}
	return m.doc.Map.Layers[index].Name
}

// TileIDAt returns the tile id stored on the current layer at the given
// tile coordinates.
func (m *EditableMap) TileIDAt(x, y int) int {
	layer := m.doc.CurrentLayer()
	if layer == nil {
		return 0
	}
	return layer.TileAt(typedef.TilePos{X: x, Y: y})
}

// EditableTileset is the script-facing view of an open tileset document.
type EditableTileset struct {
	doc *document.TilesetDocument
}

// NewEditableTileset wraps a tileset document.
func NewEditableTileset(doc *document.TilesetDocument) *EditableTileset {
	if doc == nil {
		return nil
	}
	return &EditableTileset{doc: doc}
}

// Document returns the underlying document.
func (t *EditableTileset) Document() *document.TilesetDocument { return t.doc }

func (t *EditableTileset) Name() string { return t.doc.Tileset.Name }

func (t *EditableTileset) FileName() string { return t.doc.FileName }

func (t *EditableTileset) TileCount() int { return t.doc.Tileset.TileCount() }

// Tile returns the editable view of the tile with the given id, or nil.
func (t *EditableTileset) Tile(id int) *EditableTile {
	tile := t.doc.Tileset.Tile(id)
	if tile == nil {
		return nil
	}
	return &EditableTile{tileset: t, tile: tile}
}

// EditableTile is the script-facing view of a single tile.
type EditableTile struct {
	tileset *EditableTileset
	tile    *typedef.Tile
}

func (t *EditableTile) ID() int { return t.tile.ID }

// Tileset returns the editable view of the owning tileset.
func (t *EditableTile) Tileset() *EditableTileset { return t.tileset }

// Tile returns the underlying tile.
func (t *EditableTile) Tile() *typedef.Tile { return t.tile }
