// Package document models the files currently open in the editor: maps and
// tilesets. Documents own their data; tools and script wrappers only borrow
// references while a document stays open.
package document

import (
	"sync"

	"github.com/google/uuid"

	"mapstudio/typedef"
)

// MapDocument is an open map file.
type MapDocument struct {
	ID       string
	FileName string
	Map      *typedef.Map

	currentLayer int
}

// NewMapDocument wraps a map in a document.
func NewMapDocument(fileName string, m *typedef.Map) *MapDocument {
	return &MapDocument{
		ID:       uuid.NewString(),
		FileName: fileName,
		Map:      m,
	}
}

// CurrentLayer returns the layer currently selected for editing, or nil
// when the map has no layers.
func (d *MapDocument) CurrentLayer() *typedef.Layer {
	if d.Map == nil || d.currentLayer < 0 || d.currentLayer >= len(d.Map.Layers) {
		return nil
	}
	return d.Map.Layers[d.currentLayer]
}

// SetCurrentLayer selects a layer by index. Out-of-range indexes clear the
// selection.
func (d *MapDocument) SetCurrentLayer(index int) {
	if d.Map == nil || index < 0 || index >= len(d.Map.Layers) {
		d.currentLayer = -1
		return
	}
	d.currentLayer = index
}

// TilesetDocument is an open tileset file.
type TilesetDocument struct {
	ID       string
	FileName string
	Tileset  *typedef.Tileset
}

// NewTilesetDocument wraps a tileset in a document.
func NewTilesetDocument(fileName string, ts *typedef.Tileset) *TilesetDocument {
	return &TilesetDocument{
		ID:       uuid.NewString(),
		FileName: fileName,
		Tileset:  ts,
	}
}

// Manager is the registry of open documents, keyed by file name.
type Manager struct {
	mu       sync.Mutex
	maps     map[string]*MapDocument
	tilesets map[string]*TilesetDocument
}

// NewManager creates an empty document manager.
func NewManager() *Manager {
	return &Manager{
		maps:     make(map[string]*MapDocument),
		tilesets: make(map[string]*TilesetDocument),
	}
}

// AddMap registers an open map document, replacing any document already
// registered under the same file name.
func (m *Manager) AddMap(doc *MapDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[doc.FileName] = doc
}

// AddTileset registers an open tileset document.
func (m *Manager) AddTileset(doc *TilesetDocument) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tilesets[doc.FileName] = doc
}

// RemoveMap closes a map document.
func (m *Manager) RemoveMap(fileName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.maps, fileName)
}

// RemoveTileset closes a tileset document.
func (m *Manager) RemoveTileset(fileName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tilesets, fileName)
}

// MapByName returns the open map document with the given file name, or nil.
func (m *Manager) MapByName(fileName string) *MapDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maps[fileName]
}

// FindTilesetDocument returns the open document managing the given tileset,
// or nil when the tileset is not backed by an open document.
func (m *Manager) FindTilesetDocument(ts *typedef.Tileset) *TilesetDocument {
	if ts == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range m.tilesets {
		if doc.Tileset == ts {
			return doc
		}
	}
	return nil
}

// Maps returns a snapshot of the open map documents.
func (m *Manager) Maps() []*MapDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*MapDocument, 0, len(m.maps))
	for _, doc := range m.maps {
		out = append(out, doc)
	}
	return out
}

// Tilesets returns a snapshot of the open tileset documents.
func (m *Manager) Tilesets() []*TilesetDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*TilesetDocument, 0, len(m.tilesets))
	for _, doc := range m.tilesets {
		out = append(out, doc)
	}
	return out
}
