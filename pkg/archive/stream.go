// Package archive implements the versioned, compressed, randomly
// addressable multi-mesh container format used for serialized geometry.
package archive

import (
	"encoding/binary"
	"errors"
	"io"
)

// Format errors.
var (
	ErrByteOrder          = errors.New("archive streams must use little-endian byte order")
	ErrLegacyFormat       = errors.New("legacy geometry file; re-export the scene to update it")
	ErrInvalidMagic       = errors.New("invalid archive file format")
	ErrUnsupportedVersion = errors.New("incompatible archive file version")
	ErrIndexOutOfRange    = errors.New("mesh index is out of range")
	ErrTruncated          = errors.New("truncated archive")
)

// Stream reads and writes the container's primitive types over a byte
// stream. The format mandates little-endian order; both constructors reject
// any other, never silently correcting it.
type Stream struct {
	r     io.Reader
	w     io.Writer
	order binary.ByteOrder
}

// NewReadStream wraps r for typed little-endian reads.
func NewReadStream(r io.Reader, order binary.ByteOrder) (*Stream, error) {
	if order != binary.ByteOrder(binary.LittleEndian) {
		return nil, ErrByteOrder
	}
	return &Stream{r: r, order: order}, nil
}

// NewWriteStream wraps w for typed little-endian writes.
func NewWriteStream(w io.Writer, order binary.ByteOrder) (*Stream, error) {
	if order != binary.ByteOrder(binary.LittleEndian) {
		return nil, ErrByteOrder
	}
	return &Stream{w: w, order: order}, nil
}

func (s *Stream) ReadU16() (uint16, error) {
	var v uint16
	err := binary.Read(s.r, s.order, &v)
	return v, err
}

func (s *Stream) ReadU32() (uint32, error) {
	var v uint32
	err := binary.Read(s.r, s.order, &v)
	return v, err
}

func (s *Stream) ReadU64() (uint64, error) {
	var v uint64
	err := binary.Read(s.r, s.order, &v)
	return v, err
}

// ReadString reads a null-terminated string.
func (s *Stream) ReadString() (string, error) {
	var out []byte
	var b [1]byte
	for {
		if _, err := io.ReadFull(s.r, b[:]); err != nil {
			return "", err
		}
		if b[0] == 0 {
			return string(out), nil
		}
		out = append(out, b[0])
	}
}

func (s *Stream) ReadU32s(n int) ([]uint32, error) {
	v := make([]uint32, n)
	err := binary.Read(s.r, s.order, v)
	return v, err
}

func (s *Stream) ReadF32s(n int) ([]float32, error) {
	v := make([]float32, n)
	err := binary.Read(s.r, s.order, v)
	return v, err
}

func (s *Stream) ReadF64s(n int) ([]float64, error) {
	v := make([]float64, n)
	err := binary.Read(s.r, s.order, v)
	return v, err
}

func (s *Stream) WriteU16(v uint16) error {
	return binary.Write(s.w, s.order, v)
}

func (s *Stream) WriteU32(v uint32) error {
	return binary.Write(s.w, s.order, v)
}

func (s *Stream) WriteU64(v uint64) error {
	return binary.Write(s.w, s.order, v)
}

// WriteString writes a null-terminated string.
func (s *Stream) WriteString(v string) error {
	if _, err := io.WriteString(s.w, v); err != nil {
		return err
	}
	_, err := s.w.Write([]byte{0})
	return err
}

func (s *Stream) WriteU32s(v []uint32) error {
	return binary.Write(s.w, s.order, v)
}

func (s *Stream) WriteF32s(v []float32) error {
	return binary.Write(s.w, s.order, v)
}
