package archive

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/Faultbox/lumen/pkg/math"
	"github.com/Faultbox/lumen/pkg/mesh"
)

// Container constants. The legacy magic is the modern one with swapped
// bytes, produced by a retired exporter; such files must be re-exported.
const (
	formatMagic        = 0x041C
	legacyMagic        = 0x1C04
	VersionV3   uint16 = 0x0003
	VersionV4   uint16 = 0x0004
)

// Per-mesh flag bits.
const (
	flagHasNormals      = 0x0001
	flagHasUVs          = 0x0002
	flagHasTangents     = 0x0004 // reserved, never set
	flagHasColors       = 0x0008
	flagFaceNormals     = 0x0010
	flagSinglePrecision = 0x1000
	flagDoublePrecision = 0x2000
)

// ReadMesh deserializes the index-th mesh from a multi-mesh archive. Each
// caller must own its ReadSeeker; handles are seeked freely and cannot be
// shared concurrently.
func ReadMesh(rs io.ReadSeeker, index int) (*mesh.Mesh, error) {
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	s, err := NewReadStream(rs, binary.LittleEndian)
	if err != nil {
		return nil, err
	}

	version, err := readHeader(s)
	if err != nil {
		return nil, err
	}

	if index != 0 {
		if err := seekSubStream(rs, s, version, index); err != nil {
			return nil, err
		}
	}

	zr, err := zlib.NewReader(rs)
	if err != nil {
		return nil, fmt.Errorf("opening compressed sub-stream %d: %w", index, err)
	}
	defer zr.Close()
	zs, err := NewReadStream(zr, binary.LittleEndian)
	if err != nil {
		return nil, err
	}

	var m *mesh.Mesh
	switch version {
	case VersionV3:
		m, err = decodeMeshV3(zs)
	case VersionV4:
		m, err = decodeMeshV4(zs)
	}
	if err != nil {
		return nil, fmt.Errorf("decoding mesh %d: %w", index, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("decoding mesh %d: %w", index, err)
	}
	return m, nil
}

// MeshCount returns the number of meshes recorded in the archive's trailing
// index table.
func MeshCount(rs io.ReadSeeker) (int, error) {
	s, err := NewReadStream(rs, binary.LittleEndian)
	if err != nil {
		return 0, err
	}
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if size < 4 {
		return 0, ErrTruncated
	}
	if _, err := rs.Seek(size-4, io.SeekStart); err != nil {
		return 0, err
	}
	count, err := s.ReadU32()
	return int(count), err
}

func readHeader(s *Stream) (uint16, error) {
	magic, err := s.ReadU16()
	if err != nil {
		return 0, fmt.Errorf("reading magic: %w", err)
	}
	if magic == legacyMagic {
		return 0, ErrLegacyFormat
	}
	if magic != formatMagic {
		return 0, fmt.Errorf("%w: 0x%04X", ErrInvalidMagic, magic)
	}
	version, err := s.ReadU16()
	if err != nil {
		return 0, fmt.Errorf("reading version: %w", err)
	}
	if version != VersionV3 && version != VersionV4 {
		return 0, fmt.Errorf("%w: 0x%04X", ErrUnsupportedVersion, version)
	}
	return version, nil
}

// seekSubStream positions rs at the start of sub-stream index using the
// trailing offset table. V3 tables hold 32-bit offsets, V4 tables 64-bit
// ones; the final uint32 is the mesh count in both.
func seekSubStream(rs io.ReadSeeker, s *Stream, version uint16, index int) error {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	if size < 4 {
		return ErrTruncated
	}
	if _, err := rs.Seek(size-4, io.SeekStart); err != nil {
		return err
	}
	count, err := s.ReadU32()
	if err != nil {
		return err
	}
	if index < 0 || index >= int(count) {
		return fmt.Errorf("%w: requested %d of 0..%d",
			ErrIndexOutOfRange, index, int(count)-1)
	}

	var offset int64
	switch version {
	case VersionV3:
		if _, err := rs.Seek(size-4*int64(int(count)-index+1), io.SeekStart); err != nil {
			return err
		}
		v, err := s.ReadU32()
		if err != nil {
			return err
		}
		offset = int64(v)
	case VersionV4:
		if _, err := rs.Seek(size-8*int64(int(count)-index)-4, io.SeekStart); err != nil {
			return err
		}
		v, err := s.ReadU64()
		if err != nil {
			return err
		}
		offset = int64(v)
	}

	if _, err := rs.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	// Every sub-stream repeats the two header shorts; skip past them so the
	// next read lands on compressed data.
	_, err = rs.Seek(4, io.SeekCurrent)
	return err
}

// decodeMeshV3 decodes a version 3 payload: flags, counts, attribute
// arrays, indices. V3 has no per-mesh name.
func decodeMeshV3(s *Stream) (*mesh.Mesh, error) {
	flags, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("reading flags: %w", err)
	}
	vertexCount, err := s.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("reading vertex count: %w", err)
	}
	triangleCount, err := s.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("reading triangle count: %w", err)
	}
	return decodeBuffers(s, "", flags, vertexCount, triangleCount)
}

// decodeMeshV4 decodes a version 4 payload, which inserts the mesh name
// between the flags and the counts.
func decodeMeshV4(s *Stream) (*mesh.Mesh, error) {
	flags, err := s.ReadU32()
	if err != nil {
		return nil, fmt.Errorf("reading flags: %w", err)
	}
	name, err := s.ReadString()
	if err != nil {
		return nil, fmt.Errorf("reading name: %w", err)
	}
	vertexCount, err := s.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("reading vertex count: %w", err)
	}
	triangleCount, err := s.ReadU64()
	if err != nil {
		return nil, fmt.Errorf("reading triangle count: %w", err)
	}
	return decodeBuffers(s, name, flags, vertexCount, triangleCount)
}

func decodeBuffers(s *Stream, name string, flags uint32, vertexCount, triangleCount uint64) (*mesh.Mesh, error) {
	double := flags&flagDoublePrecision != 0
	m := mesh.New(name, int(triangleCount), int(vertexCount), mesh.Options{
		Normals:     flags&flagHasNormals != 0,
		UVs:         flags&flagHasUVs != 0,
		Colors:      flags&flagHasColors != 0,
		FaceNormals: flags&flagFaceNormals != 0,
	})

	if err := readVec3s(s, m.Positions, double); err != nil {
		return nil, fmt.Errorf("reading positions: %w", err)
	}
	if m.HasNormals() {
		if err := readVec3s(s, m.Normals, double); err != nil {
			return nil, fmt.Errorf("reading normals: %w", err)
		}
	}
	if m.HasUVs() {
		if err := readVec2s(s, m.UVs, double); err != nil {
			return nil, fmt.Errorf("reading uvs: %w", err)
		}
	}
	if m.HasColors() {
		if err := readVec3s(s, m.Colors, double); err != nil {
			return nil, fmt.Errorf("reading colors: %w", err)
		}
	}

	idx, err := s.ReadU32s(3 * int(triangleCount))
	if err != nil {
		return nil, fmt.Errorf("reading triangles: %w", err)
	}
	for i := range m.Triangles {
		m.Triangles[i] = mesh.Triangle{idx[3*i], idx[3*i+1], idx[3*i+2]}
	}
	return m, nil
}

// readVec3s fills dst from the stream, converting element-wise through a
// stored-width scratch buffer when the file precision differs from the
// runtime's float32.
func readVec3s(s *Stream, dst []math.Vec3, double bool) error {
	n := 3 * len(dst)
	if double {
		buf, err := s.ReadF64s(n)
		if err != nil {
			return err
		}
		for i := range dst {
			dst[i] = math.Vec3{
				X: float32(buf[3*i]),
				Y: float32(buf[3*i+1]),
				Z: float32(buf[3*i+2]),
			}
		}
		return nil
	}
	buf, err := s.ReadF32s(n)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Vec3{X: buf[3*i], Y: buf[3*i+1], Z: buf[3*i+2]}
	}
	return nil
}

func readVec2s(s *Stream, dst []math.Vec2, double bool) error {
	n := 2 * len(dst)
	if double {
		buf, err := s.ReadF64s(n)
		if err != nil {
			return err
		}
		for i := range dst {
			dst[i] = math.Vec2{X: float32(buf[2*i]), Y: float32(buf[2*i+1])}
		}
		return nil
	}
	buf, err := s.ReadF32s(n)
	if err != nil {
		return err
	}
	for i := range dst {
		dst[i] = math.Vec2{X: buf[2*i], Y: buf[2*i+1]}
	}
	return nil
}
