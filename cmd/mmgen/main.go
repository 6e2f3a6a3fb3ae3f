package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"mmcheck/pkg/mm0"
	"mmcheck/pkg/mmb"
)

// mmgen writes the built-in propositional calculus environment to disk as
// a matching .mm0/.mmb pair, mostly for demos and for feeding mmserver's
// watch directory.

var outDir = flag.String("out", ".", "directory to write prop.mm0 and prop.mmb to")

func main() {
	flag.Parse()

	proof, err := mmb.PropCalc()
	if err != nil {
		fatal(err)
	}

	proofPath := filepath.Join(*outDir, "prop.mmb")
	if err := os.WriteFile(proofPath, proof, 0644); err != nil {
		fatal(err)
	}
	fmt.Println("wrote", proofPath)

	specPath := filepath.Join(*outDir, "prop.mm0")
	if err := os.WriteFile(specPath, []byte(mm0.PropCalcSource), 0644); err != nil {
		fatal(err)
	}
	fmt.Println("wrote", specPath)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "mmgen:", err)
	os.Exit(1)
}
