package main

import (
	"fmt"
	"io"
	"strings"

	cronjob "github.com/GoSim-25-26J-441/image-studio-backend/internal/artifacts/cron"
	"github.com/GoSim-25-26J-441/image-studio-backend/internal/lineage"
)

// printForest renders a snapshot as an indented tree, marking the selected artifact.
func printForest(w io.Writer, args []string) error {
	artifacts, err := cronjob.ReadSnapshot(args[0])
	if err != nil {
		return err
	}
	selected := ""
	if len(args) > 1 {
		selected = args[1]
	}

	f := lineage.BuildForest(artifacts)
	for _, row := range lineage.Flatten(f, selected) {
		mark := " "
		if row.Selected {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s%s  %q\n", mark, strings.Repeat("  ", row.Depth), row.Artifact.ID, row.Artifact.Prompt)
	}

	if len(f.Duplicates) > 0 {
		fmt.Fprintf(w, "duplicate ids ignored: %s\n", strings.Join(f.Duplicates, ", "))
	}
	if len(f.Broken) > 0 {
		fmt.Fprintf(w, "cycles broken at: %s\n", strings.Join(f.Broken, ", "))
	}
	return nil
}
