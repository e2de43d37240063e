package storage

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	// Magic bytes to identify our file format
	MagicBytes = "GDIF"
	// Current version
	FormatVersion = 1
	// File extension for diff snapshot files
	FileExtension = ".gdiff"
)

// FileHeader represents the header of a snapshot file
type FileHeader struct {
	Magic    [4]byte // "GDIF"
	Version  uint8   // Format version
	Flags    uint8   // Reserved for future use
	Reserved [2]byte // Reserved for future use
}

// WriteHeader writes the file header to the given writer
func WriteHeader(w io.Writer) error {
	header := FileHeader{
		Magic:    [4]byte{'G', 'D', 'I', 'F'},
		Version:  FormatVersion,
		Flags:    0,
		Reserved: [2]byte{0, 0},
	}

	return binary.Write(w, binary.LittleEndian, header)
}

// ReadHeader reads and validates the file header
func ReadHeader(r io.Reader) (*FileHeader, error) {
	var header FileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	// Validate magic bytes
	if string(header.Magic[:]) != MagicBytes {
		return nil, fmt.Errorf("invalid file format: expected %s, got %s", MagicBytes, string(header.Magic[:]))
	}

	// Validate version
	if header.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported file version: %d", header.Version)
	}

	return &header, nil
}

// snapshotField is one field descriptor in a stored layer
type snapshotField struct {
	Name string `msgpack:"name"`
	Type string `msgpack:"type"`
}

// snapshotLayer is one stored dataset. Geometries are stored as WKB.
type snapshotLayer struct {
	Fields        []snapshotField          `msgpack:"fields"`
	GeometryField string                   `msgpack:"geometry_field,omitempty"`
	CRSCode       string                   `msgpack:"crs,omitempty"`
	Geographic    bool                     `msgpack:"geographic,omitempty"`
	Records       []map[string]interface{} `msgpack:"records"`
}

// snapshotData is the on-disk payload structure
type snapshotData struct {
	Layers   map[string]snapshotLayer `msgpack:"layers"`
	Order    []string                 `msgpack:"order"`
	Metadata map[string]interface{}   `msgpack:"metadata,omitempty"`
}

// newSnapshotData creates an empty payload structure
func newSnapshotData() *snapshotData {
	return &snapshotData{
		Layers:   make(map[string]snapshotLayer),
		Metadata: make(map[string]interface{}),
	}
}
