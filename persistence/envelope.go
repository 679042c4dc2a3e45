package persistence

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

const (
	// Magic identifies ensemble envelopes (ASCII "XVAL").
	Magic = "XVAL"
	// Version is the current envelope format version.
	Version uint16 = 1

	// MaxPayloadSize bounds the stored payload read back from an envelope.
	MaxPayloadSize = 1 << 32
)

var (
	// ErrInvalidMagic is returned when a stream does not start with Magic.
	ErrInvalidMagic = errors.New("invalid magic number")
	// ErrInvalidVersion is returned for envelopes written by another format version.
	ErrInvalidVersion = errors.New("unsupported version")
	// ErrPayloadTooLarge is returned when a header declares sizes beyond
	// MaxPayloadSize or a raw size its stored payload cannot decode to.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrTrailingData is returned when load leaves decoded payload bytes unread.
	ErrTrailingData = errors.New("trailing data after ensemble")
)

// Header describes an envelope.
type Header struct {
	Version     uint16
	Compression Compression
	// Description is the transform description the ensemble was trained with.
	Description string
	// RawSize is the uncompressed payload size.
	RawSize uint64
	// StoredSize is the payload size on disk.
	StoredSize uint64
	// Checksum is the CRC32 of the stored payload.
	Checksum uint32
}

// WriteEnsemble writes an envelope around the bytes produced by store.
func WriteEnsemble(w io.Writer, description string, c Compression, store func(io.Writer) error) (Header, error) {
	if len(description) > math.MaxUint16 {
		return Header{}, fmt.Errorf("persistence: description too long (%d bytes)", len(description))
	}

	var raw bytes.Buffer
	if err := store(&raw); err != nil {
		return Header{}, err
	}

	stored, applied, err := compress(raw.Bytes(), c)
	if err != nil {
		return Header{}, fmt.Errorf("persistence: compress: %w", err)
	}

	h := Header{
		Version:     Version,
		Compression: applied,
		Description: description,
		RawSize:     uint64(raw.Len()),
		StoredSize:  uint64(len(stored)),
		Checksum:    ComputeChecksum(stored),
	}

	if err := writeHeader(w, h); err != nil {
		return Header{}, err
	}
	if _, err := w.Write(stored); err != nil {
		return Header{}, err
	}
	return h, nil
}

// ReadEnsemble reads an envelope, verifies it and passes the decoded payload
// to load. load must consume the whole payload.
func ReadEnsemble(r io.Reader, load func(h Header, r io.Reader) error) (Header, error) {
	h, err := ReadHeader(r)
	if err != nil {
		return h, err
	}

	// The buffer grows with the bytes actually present, so a header that
	// overstates StoredSize cannot force a large allocation.
	cr := NewChecksumReader(io.LimitReader(r, int64(h.StoredSize)))
	var stored bytes.Buffer
	n, err := io.Copy(&stored, cr)
	if err != nil {
		return h, fmt.Errorf("persistence: read payload: %w", err)
	}
	if uint64(n) != h.StoredSize {
		return h, fmt.Errorf("persistence: read payload: %w (%d of %d bytes)", io.ErrUnexpectedEOF, n, h.StoredSize)
	}
	if err := cr.Verify(h.Checksum); err != nil {
		return h, err
	}

	raw, err := decompress(stored.Bytes(), h.Compression, int(h.RawSize))
	if err != nil {
		return h, fmt.Errorf("persistence: decompress: %w", err)
	}

	payload := bytes.NewReader(raw)
	if err := load(h, payload); err != nil {
		return h, err
	}
	if payload.Len() > 0 {
		return h, fmt.Errorf("%w: %d bytes", ErrTrailingData, payload.Len())
	}
	return h, nil
}

// ReadHeader reads and validates an envelope header, leaving r positioned at
// the payload.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header

	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return h, err
	}
	if string(magic[:]) != Magic {
		return h, ErrInvalidMagic
	}

	var fixed struct {
		Version     uint16
		Compression uint8
		Reserved    uint8
		DescLen     uint16
	}
	if err := binary.Read(r, binary.LittleEndian, &fixed); err != nil {
		return h, err
	}
	if fixed.Version != Version {
		return h, fmt.Errorf("%w: %d", ErrInvalidVersion, fixed.Version)
	}
	h.Version = fixed.Version
	h.Compression = Compression(fixed.Compression)
	if h.Compression > CompressionZSTD {
		return h, fmt.Errorf("%w: %d", ErrUnknownCompression, fixed.Compression)
	}

	desc := make([]byte, fixed.DescLen)
	if _, err := io.ReadFull(r, desc); err != nil {
		return h, err
	}
	h.Description = string(desc)

	var sizes struct {
		RawSize    uint64
		StoredSize uint64
		Checksum   uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &sizes); err != nil {
		return h, err
	}
	if sizes.StoredSize > MaxPayloadSize || sizes.RawSize > MaxPayloadSize {
		return h, ErrPayloadTooLarge
	}
	if sizes.RawSize > maxRawSize(h.Compression, sizes.StoredSize) {
		return h, fmt.Errorf("%w: raw size %d from %d stored bytes", ErrPayloadTooLarge, sizes.RawSize, sizes.StoredSize)
	}
	h.RawSize = sizes.RawSize
	h.StoredSize = sizes.StoredSize
	h.Checksum = sizes.Checksum
	return h, nil
}

func writeHeader(w io.Writer, h Header) error {
	if _, err := io.WriteString(w, Magic); err != nil {
		return err
	}
	fixed := struct {
		Version     uint16
		Compression uint8
		Reserved    uint8
		DescLen     uint16
	}{h.Version, uint8(h.Compression), 0, uint16(len(h.Description))}
	if err := binary.Write(w, binary.LittleEndian, fixed); err != nil {
		return err
	}
	if _, err := io.WriteString(w, h.Description); err != nil {
		return err
	}
	sizes := struct {
		RawSize    uint64
		StoredSize uint64
		Checksum   uint32
	}{h.RawSize, h.StoredSize, h.Checksum}
	return binary.Write(w, binary.LittleEndian, sizes)
}
