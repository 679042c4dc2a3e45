package record

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/hupe1980/crossval/codec"
	"github.com/hupe1980/crossval/metadata"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 16 * 1024 * 1024

// Schema is the default attribute schema applied on ingest.
var Schema = metadata.Schema{
	KeyPartition:     metadata.FieldTypeInt,
	KeyAllPartitions: metadata.FieldTypeBool,
}

type line struct {
	Metadata map[string]any `json:"metadata"`
	Vector   []float32      `json:"vector"`
}

// ReadJSONL decodes a dataset from JSON Lines. Blank lines are skipped.
// If c is nil, codec.Default is used; if schema is nil, no validation is done.
func ReadJSONL(r io.Reader, c codec.Codec, schema metadata.Schema) (Dataset, error) {
	if c == nil {
		c = codec.Default
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var ds Dataset
	n := 0
	for sc.Scan() {
		n++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}

		var l line
		if err := c.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("record: line %d: %w", n, err)
		}
		if err := schema.ValidateMap(l.Metadata); err != nil {
			return nil, fmt.Errorf("record: line %d: %w", n, err)
		}
		doc, err := metadata.DocumentFromAny(l.Metadata)
		if err != nil {
			return nil, fmt.Errorf("record: line %d: %w", n, err)
		}
		ds = append(ds, Record{Metadata: doc, Vector: l.Vector})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("record: read: %w", err)
	}
	return ds, nil
}

// WriteJSONL encodes a dataset as JSON Lines.
func WriteJSONL(w io.Writer, c codec.Codec, ds Dataset) error {
	if c == nil {
		c = codec.Default
	}

	bw := bufio.NewWriter(w)
	for i := range ds {
		b, err := c.Marshal(line{Metadata: ds[i].Metadata.ToMap(), Vector: ds[i].Vector})
		if err != nil {
			return fmt.Errorf("record: encode %d: %w", i, err)
		}
		if _, err := bw.Write(b); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
