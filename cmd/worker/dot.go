package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	cronjob "github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/cron"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/lineage"
)

// writeDOT converts a snapshot to Graphviz. Without an output path the DOT goes to w.
func writeDOT(w io.Writer, args []string) error {
	inPath := args[0]
	artifacts, err := cronjob.ReadSnapshot(inPath)
	if err != nil {
		return err
	}

	title := strings.TrimSuffix(filepath.Base(inPath), filepath.Ext(inPath))
	if len(args) > 2 {
		title = args[2]
	}
	dot := lineage.ToDOT(lineage.BuildForest(artifacts), title, "")

	if len(args) < 2 || args[1] == "-" {
		_, err := io.WriteString(w, dot)
		return err
	}
	return os.WriteFile(args[1], []byte(dot), 0o644)
}
