package archive

import (
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/Faultbox/lumen/pkg/math"
	"github.com/Faultbox/lumen/pkg/mesh"
)

// countingWriter tracks the absolute offset of every byte written, so the
// offset table can be built without seeking.
type countingWriter struct {
	w io.Writer
	n uint64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += uint64(n)
	return n, err
}

// Writer serializes meshes into a multi-mesh archive. Meshes are written
// back to back; Close appends the trailing random-access offset table and
// the mesh count.
type Writer struct {
	cw      countingWriter
	s       *Stream
	offsets []uint64
	closed  bool
}

// NewWriter returns a Writer emitting to w. Output is always little-endian.
func NewWriter(w io.Writer) (*Writer, error) {
	aw := &Writer{cw: countingWriter{w: w}}
	s, err := NewWriteStream(&aw.cw, binary.LittleEndian)
	if err != nil {
		return nil, err
	}
	aw.s = s
	return aw, nil
}

// WriteMesh appends one mesh. Output is always version 4 and the runtime's
// native single precision, regardless of what the mesh was loaded from.
func (w *Writer) WriteMesh(m *mesh.Mesh) error {
	if w.closed {
		return errors.New("archive writer is closed")
	}
	w.offsets = append(w.offsets, w.cw.n)

	if err := w.s.WriteU16(formatMagic); err != nil {
		return err
	}
	if err := w.s.WriteU16(VersionV4); err != nil {
		return err
	}

	zw := zlib.NewWriter(&w.cw)
	zs, err := NewWriteStream(zw, binary.LittleEndian)
	if err != nil {
		return err
	}
	if err := encodeMeshV4(zs, m); err != nil {
		zw.Close()
		return fmt.Errorf("encoding mesh %q: %w", m.Name, err)
	}
	return zw.Close()
}

// Close finalizes the archive. The Writer cannot be reused afterwards.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	for _, off := range w.offsets {
		if err := w.s.WriteU64(off); err != nil {
			return err
		}
	}
	return w.s.WriteU32(uint32(len(w.offsets)))
}

func encodeMeshV4(s *Stream, m *mesh.Mesh) error {
	flags := uint32(flagSinglePrecision)
	if m.HasNormals() {
		flags |= flagHasNormals
	}
	if m.HasUVs() {
		flags |= flagHasUVs
	}
	if m.HasColors() {
		flags |= flagHasColors
	}
	if m.FaceNormalsMode() {
		flags |= flagFaceNormals
	}

	if err := s.WriteU32(flags); err != nil {
		return err
	}
	if err := s.WriteString(m.Name); err != nil {
		return err
	}
	if err := s.WriteU64(uint64(len(m.Positions))); err != nil {
		return err
	}
	if err := s.WriteU64(uint64(len(m.Triangles))); err != nil {
		return err
	}

	if err := writeVec3s(s, m.Positions); err != nil {
		return err
	}
	if m.HasNormals() {
		if err := writeVec3s(s, m.Normals); err != nil {
			return err
		}
	}
	if m.HasUVs() {
		if err := writeVec2s(s, m.UVs); err != nil {
			return err
		}
	}
	if m.HasColors() {
		if err := writeVec3s(s, m.Colors); err != nil {
			return err
		}
	}

	idx := make([]uint32, 0, 3*len(m.Triangles))
	for _, tri := range m.Triangles {
		idx = append(idx, tri[0], tri[1], tri[2])
	}
	return s.WriteU32s(idx)
}

func writeVec3s(s *Stream, src []math.Vec3) error {
	buf := make([]float32, 0, 3*len(src))
	for _, v := range src {
		buf = append(buf, v.X, v.Y, v.Z)
	}
	return s.WriteF32s(buf)
}

func writeVec2s(s *Stream, src []math.Vec2) error {
	buf := make([]float32, 0, 2*len(src))
	for _, v := range src {
		buf = append(buf, v.X, v.Y)
	}
	return s.WriteF32s(buf)
}
