// meshtool is a CLI utility for working with serialized mesh archives.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Faultbox/lumen/internal/config"
	"github.com/Faultbox/lumen/internal/logger"
	"github.com/Faultbox/lumen/pkg/archive"
	"github.com/Faultbox/lumen/pkg/mesh"
)

var cfg *config.Config

func main() {
	config.ParseFlags()

	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.LogFile)
	defer logger.Sync()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	command := args[0]
	args = args[1:]

	switch command {
	case "info":
		cmdInfo(args)
	case "export":
		cmdExport(args)
	case "smooth":
		cmdSmooth(args)
	case "repack":
		cmdRepack(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - serialized mesh archive utility

Usage:
  meshtool [flags] <command> [arguments]

Commands:
  info <file>                        Show archive and per-mesh information
  export <file> <index> [out.obj]    Export one mesh as Wavefront OBJ
  smooth <file> <index> [out]        Rebuild topology and recompute normals
  repack <file> <out>                Rewrite every mesh through the codec

Flags:
  -config path   Config file (default: meshtool.yaml)
  -debug         Enable debug logging
  -angle deg     Crease angle for smooth (default from config)
  -out dir       Output directory for exported files

Examples:
  meshtool info scene.serialized
  meshtool export scene.serialized 2 bunny.obj
  meshtool -angle 25 smooth scene.serialized 0 smoothed.serialized`)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func openArchive(path string) *os.File {
	f, err := os.Open(path)
	if err != nil {
		fatal(err)
	}
	return f
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fatal(fmt.Errorf("usage: meshtool info <file>"))
	}
	f := openArchive(args[0])
	defer f.Close()

	count, err := archive.MeshCount(f)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("%s: %d mesh(es)\n", args[0], count)

	for i := 0; i < count; i++ {
		m, err := archive.ReadMesh(f, i)
		if err != nil {
			fatal(fmt.Errorf("mesh %d: %w", i, err))
		}
		fmt.Printf("  [%d] %s\n", i, m)
	}
}

func cmdExport(args []string) {
	if len(args) < 2 {
		fatal(fmt.Errorf("usage: meshtool export <file> <index> [out.obj]"))
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		fatal(fmt.Errorf("invalid mesh index %q", args[1]))
	}

	f := openArchive(args[0])
	defer f.Close()

	m, err := archive.ReadMesh(f, index)
	if err != nil {
		fatal(err)
	}
	m.SetLogger(logger.Log)
	m.ComputeNormals()

	outPath := filepath.Join(cfg.Export.Dir, fmt.Sprintf("mesh%d.obj", index))
	if len(args) >= 3 {
		outPath = args[2]
	}
	out, err := os.Create(outPath)
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	if err := m.WriteOBJ(out); err != nil {
		fatal(err)
	}
	logger.Sugar.Infof("exported mesh %d (%d triangles) to %s",
		index, len(m.Triangles), outPath)
}

func cmdSmooth(args []string) {
	if len(args) < 2 {
		fatal(fmt.Errorf("usage: meshtool smooth <file> <index> [out]"))
	}
	index, err := strconv.Atoi(args[1])
	if err != nil {
		fatal(fmt.Errorf("invalid mesh index %q", args[1]))
	}

	f := openArchive(args[0])
	defer f.Close()

	m, err := archive.ReadMesh(f, index)
	if err != nil {
		fatal(err)
	}
	m.SetLogger(logger.Log)

	if err := m.RebuildTopology(cfg.Smooth.MaxAngle); err != nil {
		fatal(err)
	}
	m.ComputeNormals()

	outPath := args[0] + ".smoothed"
	if len(args) >= 3 {
		outPath = args[2]
	}
	writeSingle(m, outPath)
	logger.Sugar.Infof("smoothed mesh %d at %.1f degrees, wrote %s",
		index, cfg.Smooth.MaxAngle, outPath)
}

func cmdRepack(args []string) {
	if len(args) < 2 {
		fatal(fmt.Errorf("usage: meshtool repack <file> <out>"))
	}
	f := openArchive(args[0])
	defer f.Close()

	count, err := archive.MeshCount(f)
	if err != nil {
		fatal(err)
	}

	out, err := os.Create(args[1])
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	w, err := archive.NewWriter(out)
	if err != nil {
		fatal(err)
	}
	for i := 0; i < count; i++ {
		m, err := archive.ReadMesh(f, i)
		if err != nil {
			fatal(fmt.Errorf("mesh %d: %w", i, err))
		}
		if err := w.WriteMesh(m); err != nil {
			fatal(fmt.Errorf("mesh %d: %w", i, err))
		}
	}
	if err := w.Close(); err != nil {
		fatal(err)
	}
	logger.Sugar.Infof("repacked %d mesh(es) into %s", count, args[1])
}

func writeSingle(m *mesh.Mesh, path string) {
	out, err := os.Create(path)
	if err != nil {
		fatal(err)
	}
	defer out.Close()

	w, err := archive.NewWriter(out)
	if err != nil {
		fatal(err)
	}
	if err := w.WriteMesh(m); err != nil {
		fatal(err)
	}
	if err := w.Close(); err != nil {
		fatal(err)
	}
}
