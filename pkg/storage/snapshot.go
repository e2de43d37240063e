// Package storage persists datasets as single-file snapshots: a small
// binary header, then an lz4-compressed msgpack payload holding any number
// of named layers. Diff results and tagged source datasets are written
// and read through the same layer model.
package storage

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pierrec/lz4/v4"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/paulmach/orb/encoding/wkb"

	"github.com/gisdiff/changedet/pkg/domain"
)

// Save writes the given datasets to a snapshot file, one layer per
// dataset, keyed and ordered by dataset name
func Save(filename string, datasets ...*domain.Dataset) error {
	data := newSnapshotData()
	for _, ds := range datasets {
		layer, err := encodeLayer(ds)
		if err != nil {
			return err
		}
		data.Layers[ds.Name] = layer
		data.Order = append(data.Order, ds.Name)
	}

	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode MessagePack: %w", err)
	}
	compressedData := make([]byte, lz4.CompressBlockBound(len(msgpackData)))
	var hashTable [1 << 16]int
	n, err := lz4.CompressBlock(msgpackData, compressedData, hashTable[:])
	if err != nil {
		return fmt.Errorf("failed to compress data: %w", err)
	}
	compressedData = compressedData[:n]

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()
	if err := WriteHeader(file); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	// uncompressed size prefix lets Load allocate exactly
	if err := binary.Write(file, binary.LittleEndian, uint64(len(msgpackData))); err != nil {
		return fmt.Errorf("failed to write payload size: %w", err)
	}
	if _, err := file.Write(compressedData); err != nil {
		return fmt.Errorf("failed to write compressed data: %w", err)
	}
	return nil
}

// Load reads every layer of a snapshot file, in the order they were saved
func Load(filename string) ([]*domain.Dataset, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := ReadHeader(file); err != nil {
		return nil, fmt.Errorf("invalid file header: %w", err)
	}
	var payloadSize uint64
	if err := binary.Read(file, binary.LittleEndian, &payloadSize); err != nil {
		return nil, fmt.Errorf("failed to read payload size: %w", err)
	}
	compressedData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read compressed data: %w", err)
	}
	decompressedData := make([]byte, payloadSize)
	n, err := lz4.UncompressBlock(compressedData, decompressedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}
	decompressedData = decompressedData[:n]

	var data snapshotData
	if err := msgpack.Unmarshal(decompressedData, &data); err != nil {
		return nil, fmt.Errorf("failed to decode MessagePack: %w", err)
	}

	datasets := make([]*domain.Dataset, 0, len(data.Order))
	for _, name := range data.Order {
		layer, ok := data.Layers[name]
		if !ok {
			return nil, fmt.Errorf("snapshot layer %s listed in order but missing", name)
		}
		ds, err := decodeLayer(name, layer)
		if err != nil {
			return nil, err
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// encodeLayer converts a dataset to its stored form, geometry as WKB
func encodeLayer(ds *domain.Dataset) (snapshotLayer, error) {
	layer := snapshotLayer{
		GeometryField: ds.Schema.GeometryField,
		CRSCode:       ds.Schema.CRS.Code,
		Geographic:    ds.Schema.CRS.Geographic,
		Records:       make([]map[string]interface{}, 0, len(ds.Records)),
	}
	for _, f := range ds.Schema.Fields {
		layer.Fields = append(layer.Fields, snapshotField{Name: f.Name, Type: string(f.Type)})
	}
	for _, rec := range ds.Records {
		stored := make(map[string]interface{}, len(rec))
		for _, f := range ds.Schema.Fields {
			stored[f.Name] = rec[f.Name]
		}
		if ds.Spatial() {
			if g := ds.Geometry(rec); g != nil {
				encoded, err := wkb.Marshal(g)
				if err != nil {
					return snapshotLayer{}, fmt.Errorf("failed to encode geometry in %s: %w", ds.Name, err)
				}
				stored[ds.Schema.GeometryField] = encoded
			} else {
				stored[ds.Schema.GeometryField] = nil
			}
		}
		layer.Records = append(layer.Records, stored)
	}
	return layer, nil
}

// decodeLayer converts a stored layer back to a dataset
func decodeLayer(name string, layer snapshotLayer) (*domain.Dataset, error) {
	schema := domain.Schema{
		GeometryField: layer.GeometryField,
		CRS:           domain.CRS{Code: layer.CRSCode, Geographic: layer.Geographic},
	}
	for _, f := range layer.Fields {
		schema.Fields = append(schema.Fields, domain.Field{Name: f.Name, Type: domain.FieldType(f.Type)})
	}

	ds := domain.NewDataset(name, schema)
	for _, stored := range layer.Records {
		rec := make(domain.Record, len(stored))
		for k, v := range stored {
			rec[k] = v
		}
		if layer.GeometryField != "" {
			raw := stored[layer.GeometryField]
			if raw == nil {
				rec[layer.GeometryField] = nil
			} else {
				encoded, ok := raw.([]byte)
				if !ok {
					return nil, fmt.Errorf("layer %s has non-WKB geometry value %T", name, raw)
				}
				g, err := wkb.Unmarshal(encoded)
				if err != nil {
					return nil, fmt.Errorf("failed to decode geometry in %s: %w", name, err)
				}
				rec[layer.GeometryField] = g
			}
		}
		ds.Records = append(ds.Records, rec)
	}
	return ds, nil
}
