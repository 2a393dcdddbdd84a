package main

import (
	"log"
	"os"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("usage: worker forest <snapshot.json> [selectedId] | worker dot <snapshot.json> [out.dot] [title]")
	}

	var err error
	switch os.Args[1] {
	case "forest":
		err = printForest(os.Stdout, os.Args[2:])
	case "dot":
		err = writeDOT(os.Stdout, os.Args[2:])
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}
