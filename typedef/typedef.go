package typedef

import "math"

// Point is a position in scene (pixel) coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// TilePos is a position in tile coordinates.
type TilePos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// LayerKind describes what a layer contains.
type LayerKind int

const (
	TileLayer LayerKind = iota
	ObjectLayer
	ImageLayer
)

func (k LayerKind) String() string {
	switch k {
	case TileLayer:
		return "tile"
	case ObjectLayer:
		return "object"
	case ImageLayer:
		return "image"
	default:
		return "unknown"
	}
}

// Layer is a single layer of a map. Tile layers store one global tile id
// per cell in row-major order; zero means empty.
type Layer struct {
	Kind    LayerKind `json:"kind"`
	Name    string    `json:"name"`
	Width   int       `json:"width"`
	Height  int       `json:"height"`
	Tiles   []int     `json:"tiles,omitempty"`
	Visible bool      `json:"visible"`
}

// NewTileLayer creates an empty tile layer of the given size.
func NewTileLayer(name string, width, height int) *Layer {
	return &Layer{
		Kind:    TileLayer,
		Name:    name,
		Width:   width,
		Height:  height,
		Tiles:   make([]int, width*height),
		Visible: true,
	}
}

// TileAt returns the tile id stored at the given tile position, or zero
// when the position is outside the layer.
func (l *Layer) TileAt(pos TilePos) int {
	if l.Kind != TileLayer || pos.X < 0 || pos.Y < 0 || pos.X >= l.Width || pos.Y >= l.Height {
		return 0
	}
	return l.Tiles[pos.Y*l.Width+pos.X]
}

// SetTileAt stores a tile id at the given tile position. Out-of-bounds
// positions are ignored.
func (l *Layer) SetTileAt(pos TilePos, id int) {
	if l.Kind != TileLayer || pos.X < 0 || pos.Y < 0 || pos.X >= l.Width || pos.Y >= l.Height {
		return
	}
	l.Tiles[pos.Y*l.Width+pos.X] = id
}

// Map is the in-memory representation of a tile map.
type Map struct {
	Width      int      `json:"width"`
	Height     int      `json:"height"`
	TileWidth  int      `json:"tileWidth"`
	TileHeight int      `json:"tileHeight"`
	Layers     []*Layer `json:"layers"`
}

// NewMap creates a map with a single empty tile layer.
func NewMap(width, height, tileWidth, tileHeight int) *Map {
	return &Map{
		Width:      width,
		Height:     height,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
		Layers:     []*Layer{NewTileLayer("Layer 1", width, height)},
	}
}

// TilePosAt converts a scene position to tile coordinates.
func (m *Map) TilePosAt(pos Point) TilePos {
	tw, th := m.TileWidth, m.TileHeight
	if tw <= 0 {
		tw = 1
	}
	if th <= 0 {
		th = 1
	}
	x := int(math.Floor(pos.X / float64(tw)))
	y := int(math.Floor(pos.Y / float64(th)))
	return TilePos{X: x, Y: y}
}

// Tile is a single tile of a tileset. Tiles are owned by their tileset and
// carry a back-reference so a tile handle alone is enough to find the
// tileset it came from.
type Tile struct {
	ID      int `json:"id"`
	tileset *Tileset
}

// Tileset returns the tileset this tile belongs to.
func (t *Tile) Tileset() *Tileset {
	return t.tileset
}

// Tileset is a named collection of tiles.
type Tileset struct {
	Name       string `json:"name"`
	TileWidth  int    `json:"tileWidth"`
	TileHeight int    `json:"tileHeight"`
	tiles      []*Tile
}

// NewTileset creates a tileset populated with count tiles.
func NewTileset(name string, tileWidth, tileHeight, count int) *Tileset {
	ts := &Tileset{
		Name:       name,
		TileWidth:  tileWidth,
		TileHeight: tileHeight,
	}
	ts.tiles = make([]*Tile, count)
	for i := range ts.tiles {
		ts.tiles[i] = &Tile{ID: i, tileset: ts}
	}
	return ts
}

// Tile returns the tile with the given id, or nil.
func (ts *Tileset) Tile(id int) *Tile {
	if id < 0 || id >= len(ts.tiles) {
		return nil
	}
	return ts.tiles[id]
}

// TileCount returns the number of tiles in the tileset.
func (ts *Tileset) TileCount() int {
	return len(ts.tiles)
}
