package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4"

	"mapstudio/typedef"
)

// mapFile is the on-disk envelope of a .mapz file.
type mapFile struct {
	Version int          `json:"version"`
	Map     *typedef.Map `json:"map"`
}

const mapFileVersion = 1

// SaveMap writes a map to an LZ4-compressed JSON file.
func SaveMap(path string, m *typedef.Map) error {
	if m == nil {
		return fmt.Errorf("nil map")
	}
	data, err := json.Marshal(mapFile{Version: mapFileVersion, Map: m})
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	compressed, err := compressLZ4(data)
	if err != nil {
		return fmt.Errorf("compress map: %w", err)
	}
	return os.WriteFile(path, compressed, 0o644)
}

// LoadMap reads a map from an LZ4-compressed JSON file.
func LoadMap(path string) (*typedef.Map, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data, err := decompressLZ4(compressed)
	if err != nil {
		return nil, fmt.Errorf("decompress map: %w", err)
	}
	var file mapFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode map: %w", err)
	}
	if file.Map == nil {
		return nil, fmt.Errorf("map file %s has no map", path)
	}
	return file.Map, nil
}

// compressLZ4 compresses data using LZ4
func compressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)

	_, err := writer.Write(data)
	if err != nil {
		writer.Close()
		return nil, err
	}

	err = writer.Close()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decompressLZ4 decompresses LZ4 data
func decompressLZ4(data []byte) ([]byte, error) {
	reader := lz4.NewReader(bytes.NewReader(data))

	var buf bytes.Buffer
	_, err := io.Copy(&buf, reader)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
