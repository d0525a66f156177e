package tools

import (
	"mapstudio/document"
	"mapstudio/typedef"
)

// AbstractTileTool extends AbstractTool with hovered-tile tracking and a
// tile-layer-aware enabled default. The current tile (the would-be brush)
// is supplied by the surrounding framework, not owned here.
type AbstractTileTool struct {
	AbstractTool

	tilePos      typedef.TilePos
	hasTilePos   bool
	tile         *typedef.Tile
	brushVisible bool
}

// TilePosition returns the tile coordinates the pointer is hovering over.
func (t *AbstractTileTool) TilePosition() typedef.TilePos { return t.tilePos }

// HasTilePosition reports whether a hovered tile position is known.
func (t *AbstractTileTool) HasTilePosition() bool { return t.hasTilePos }

// CurrentTile returns the tile handed to this tool by the framework, or nil.
func (t *AbstractTileTool) CurrentTile() *typedef.Tile { return t.tile }

// SetCurrentTile updates the tile this tool would paint with.
func (t *AbstractTileTool) SetCurrentTile(tile *typedef.Tile) { t.tile = tile }

// TrackTilePosition converts a scene position into tile coordinates and
// reports whether the hovered tile changed. Concrete tools call this from
// their MouseMoved and fire TilePositionChanged on a change.
func (t *AbstractTileTool) TrackTilePosition(pos typedef.Point) (typedef.TilePos, bool) {
	doc := t.MapDocument()
	if doc == nil || doc.Map == nil {
		t.hasTilePos = false
		return typedef.TilePos{}, false
	}
	tp := doc.Map.TilePosAt(pos)
	if t.hasTilePos && tp == t.tilePos {
		return tp, false
	}
	t.tilePos = tp
	t.hasTilePos = true
	return tp, true
}

// TilePositionChanged is a no-op default; tile tools override it.
func (t *AbstractTileTool) TilePositionChanged(typedef.TilePos) {}

func (t *AbstractTileTool) MouseEntered() {
	t.UpdateBrushVisibility()
}

func (t *AbstractTileTool) MouseLeft() {
	t.hasTilePos = false
	t.brushVisible = false
}

func (t *AbstractTileTool) MapDocumentChanged(oldDoc, newDoc *document.MapDocument) {
	t.AbstractTool.MapDocumentChanged(oldDoc, newDoc)
	t.hasTilePos = false
}

// UpdateEnabledState is the tile-tool default: usable only while a tile
// layer is selected on the active document.
func (t *AbstractTileTool) UpdateEnabledState() {
	doc := t.MapDocument()
	layer := (*typedef.Layer)(nil)
	if doc != nil {
		layer = doc.CurrentLayer()
	}
	t.SetEnabled(layer != nil && layer.Kind == typedef.TileLayer)
	t.UpdateBrushVisibility()
}

// UpdateBrushVisibility recomputes whether the tile brush should be shown.
func (t *AbstractTileTool) UpdateBrushVisibility() {
	t.brushVisible = t.IsEnabled() && t.hasTilePos
}

// BrushVisible reports whether the tile brush is currently shown.
func (t *AbstractTileTool) BrushVisible() bool { return t.brushVisible }
