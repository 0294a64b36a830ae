package graph

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"unsafe"
)

const (
	magicBytes = "SSSPGRPH"
	version    = uint32(1)
	maxNodes   = 100_000_000
	maxEdges   = 1_000_000_000

	flagHasCoords = uint32(1 << 0)
)

// fileHeader is the binary header.
type fileHeader struct {
	Magic       [8]byte
	Version     uint32
	NumVertices uint32
	NumEdges    uint32
	Flags       uint32
}

// WriteBinary serializes a Graph to a binary file.
// Uses unsafe.Slice for fast zero-copy I/O.
func WriteBinary(path string, g *Graph) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath) // clean up on error
	}()

	crcWriter := crc32Writer{w: f, hash: crc32.NewIEEE()}
	w := &crcWriter

	hdr := fileHeader{
		Version:     version,
		NumVertices: g.NumVertices,
		NumEdges:    g.NumEdges,
	}
	copy(hdr.Magic[:], magicBytes)
	if g.HasCoords() {
		hdr.Flags |= flagHasCoords
	}
	if err := binary.Write(w, binary.LittleEndian, &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if err := writeUint32Slice(w, g.FirstOut); err != nil {
		return fmt.Errorf("write FirstOut: %w", err)
	}
	if err := writeUint32Slice(w, g.Head); err != nil {
		return fmt.Errorf("write Head: %w", err)
	}
	if err := writeFloat64Slice(w, g.Weight); err != nil {
		return fmt.Errorf("write Weight: %w", err)
	}

	if g.HasCoords() {
		if err := writeFloat64Slice(w, g.VertexLat); err != nil {
			return fmt.Errorf("write VertexLat: %w", err)
		}
		if err := writeFloat64Slice(w, g.VertexLon); err != nil {
			return fmt.Errorf("write VertexLon: %w", err)
		}
	}

	// CRC32 trailer over everything written so far.
	checksum := crcWriter.hash.Sum32()
	if err := binary.Write(f, binary.LittleEndian, checksum); err != nil {
		return fmt.Errorf("write CRC32: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	// Atomic rename.
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}

	return nil
}

// ReadBinary deserializes a Graph from a binary file, re-validating the CSR
// invariants before returning it.
func ReadBinary(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	crcReader := crc32Reader{r: f, hash: crc32.NewIEEE()}
	r := &crcReader

	var hdr fileHeader
	if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if string(hdr.Magic[:]) != magicBytes {
		return nil, fmt.Errorf("invalid magic bytes: %q", hdr.Magic)
	}
	if hdr.Version != version {
		return nil, fmt.Errorf("unsupported version: %d", hdr.Version)
	}
	if hdr.NumVertices > maxNodes {
		return nil, fmt.Errorf("NumVertices %d exceeds limit %d", hdr.NumVertices, maxNodes)
	}
	if hdr.NumEdges > maxEdges {
		return nil, fmt.Errorf("NumEdges %d exceeds limit %d", hdr.NumEdges, maxEdges)
	}

	firstOut, err := readUint32Slice(r, int(hdr.NumVertices+1))
	if err != nil {
		return nil, fmt.Errorf("read FirstOut: %w", err)
	}
	head, err := readUint32Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read Head: %w", err)
	}
	weight, err := readFloat64Slice(r, int(hdr.NumEdges))
	if err != nil {
		return nil, fmt.Errorf("read Weight: %w", err)
	}

	var lat, lon []float64
	if hdr.Flags&flagHasCoords != 0 {
		if lat, err = readFloat64Slice(r, int(hdr.NumVertices)); err != nil {
			return nil, fmt.Errorf("read VertexLat: %w", err)
		}
		if lon, err = readFloat64Slice(r, int(hdr.NumVertices)); err != nil {
			return nil, fmt.Errorf("read VertexLon: %w", err)
		}
	}

	// Validate CRC32.
	expectedCRC := crcReader.hash.Sum32()
	var storedCRC uint32
	if err := binary.Read(f, binary.LittleEndian, &storedCRC); err != nil {
		return nil, fmt.Errorf("read CRC32: %w", err)
	}
	if storedCRC != expectedCRC {
		return nil, fmt.Errorf("CRC32 mismatch: stored=%08x computed=%08x", storedCRC, expectedCRC)
	}

	g, err := New(firstOut, head, weight)
	if err != nil {
		return nil, err
	}
	if lat != nil {
		if err := g.SetCoords(lat, lon); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Zero-copy I/O helpers using unsafe.Slice.

func writeUint32Slice(w io.Writer, s []uint32) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
	_, err := w.Write(b)
	return err
}

func writeFloat64Slice(w io.Writer, s []float64) error {
	if len(s) == 0 {
		return nil
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*8)
	_, err := w.Write(b)
	return err
}

func readUint32Slice(r io.Reader, n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]uint32, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*4)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

func readFloat64Slice(r io.Reader, n int) ([]float64, error) {
	if n == 0 {
		return nil, nil
	}
	s := make([]float64, n)
	b := unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), n*8)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return s, nil
}

// CRC32 wrapping writers/readers.

type crc32Writer struct {
	w    io.Writer
	hash crc32Hash
}

type crc32Hash interface {
	Write([]byte) (int, error)
	Sum32() uint32
}

func (cw *crc32Writer) Write(p []byte) (int, error) {
	cw.hash.Write(p)
	return cw.w.Write(p)
}

type crc32Reader struct {
	r    io.Reader
	hash crc32Hash
}

func (cr *crc32Reader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.hash.Write(p[:n])
	}
	return n, err
}
