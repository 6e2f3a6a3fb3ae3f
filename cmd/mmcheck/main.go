package main

import (
	"flag"
	"fmt"
	"os"

	mmcheck "mmcheck/pkg"
	"mmcheck/pkg/mm0"
	"mmcheck/pkg/mmb"
)

var specPath = flag.String("spec", "", "declaration file (.mm0) to match the proof file against")
var quiet = flag.Bool("q", false, "don't print the environment listing")

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: mmcheck [-spec FILE.mm0] [-q] FILE.mmb")
		os.Exit(2)
	}
	proofPath := flag.Arg(0)

	proof, err := os.ReadFile(proofPath)
	if err != nil {
		fatal(err)
	}

	f, err := mmb.ParseFile(proof)
	if err != nil {
		fatal(err)
	}
	env, err := mmb.VerifyFile(f)
	if err != nil {
		fatal(err)
	}

	if *specPath != "" {
		specBytes, err := os.ReadFile(*specPath)
		if err != nil {
			fatal(err)
		}
		spec, err := mm0.ParseSpec(string(specBytes))
		if err != nil {
			fatal(err)
		}
		if err := mm0.Match(spec, env); err != nil {
			fatal(fmt.Errorf("%s does not match %s: %v", proofPath, *specPath, err))
		}
	}

	if !*quiet {
		fmt.Println(mmcheck.DescribeEnv(f, env))
	}
	fmt.Printf("%s: ok\n", proofPath)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "mmcheck:", err)
	os.Exit(1)
}
