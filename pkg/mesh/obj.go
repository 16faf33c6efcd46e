package mesh

import (
	"bufio"
	"fmt"
	"io"
)

// WriteOBJ writes the mesh as one Wavefront OBJ object block. Face lines
// use 1-based indices and reference uv and normal indices only when those
// attributes exist.
func (m *Mesh) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", m.Name)

	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %g %g %g\n", p.X, p.Y, p.Z)
	}
	for _, uv := range m.UVs {
		fmt.Fprintf(bw, "vt %g %g\n", uv.X, uv.Y)
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	hasUVs := m.UVs != nil
	hasNormals := m.Normals != nil
	for _, t := range m.Triangles {
		i0, i1, i2 := t[0]+1, t[1]+1, t[2]+1
		switch {
		case hasUVs && hasNormals:
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n",
				i0, i0, i0, i1, i1, i1, i2, i2, i2)
		case hasNormals:
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n",
				i0, i0, i1, i1, i2, i2)
		case hasUVs:
			fmt.Fprintf(bw, "f %d/%d %d/%d %d/%d\n",
				i0, i0, i1, i1, i2, i2)
		default:
			fmt.Fprintf(bw, "f %d %d %d\n", i0, i1, i2)
		}
	}

	return bw.Flush()
}
