package render

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// WriteOBJ выгружает живые меши в Wavefront OBJ.
// Путь с суффиксом .zst сжимается zstd.
func (r *MemoryRenderer) WriteOBJ(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if !strings.HasSuffix(path, ".zst") {
		return r.WriteOBJTo(f)
	}

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return fmt.Errorf("zstd writer: %w", err)
	}
	if err := r.WriteOBJTo(zw); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// WriteOBJTo пишет OBJ в w. Вершины переводятся в мировые координаты,
// каждый меш становится отдельным объектом с материалом по имени вокселя.
func (r *MemoryRenderer) WriteOBJTo(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# voxel-strike chunk export\n")

	base := 1 // Индексы OBJ начинаются с 1
	for _, m := range r.Meshes() {
		geo := m.Geometry
		origin := m.Coords.Scale(r.chunkSize)

		fmt.Fprintf(bw, "o chunk_%d_%d_%d_%s\n", m.Coords.X, m.Coords.Y, m.Coords.Z, m.Material)
		fmt.Fprintf(bw, "usemtl %s\n", m.Material)
		for i := 0; i+2 < len(geo.Positions); i += 3 {
			fmt.Fprintf(bw, "v %g %g %g\n",
				float32(origin.X)+geo.Positions[i],
				float32(origin.Y)+geo.Positions[i+1],
				float32(origin.Z)+geo.Positions[i+2])
		}
		for i := 0; i+2 < len(geo.Normals); i += 3 {
			fmt.Fprintf(bw, "vn %g %g %g\n", geo.Normals[i], geo.Normals[i+1], geo.Normals[i+2])
		}
		for i := 0; i+2 < len(geo.Indices); i += 3 {
			a := base + int(geo.Indices[i])
			b := base + int(geo.Indices[i+1])
			c := base + int(geo.Indices[i+2])
			fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
		}
		base += geo.VertexCount()
	}
	return bw.Flush()
}
