// cfrontc - C front-end driver
//
// Usage: cfrontc [flags] file
//
// Flags:
//   -o file        Write the textual IR module to file (default stdout)
//   -mtriple triple Override the target triple string (default "x86_64-unknown-linux-gnu")
//   -v             Verbose: trace which pipeline stage is running
//
// The pipeline is a single in-process pass: source -> parser (which calls
// Sema inline) -> ir.Emit. There is no separate codegen stage; this
// front end stops at the IR module boundary.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cfront/cfront/ir"
	"github.com/cfront/cfront/parser"
	"github.com/cfront/cfront/sema"
)

var (
	outputFile = flag.String("o", "", "output file (default stdout)")
	triple     = flag.String("mtriple", "x86_64-unknown-linux-gnu", "target triple string")
	verbose    = flag.Bool("v", false, "verbose output")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] file\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "C front-end driver\n\nFlags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}
	if err := run(flag.Arg(0), *outputFile, *triple, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "cfrontc: %s\n", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath, triple string, verbose bool) error {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "cfrontc: parsing %s\n", inputPath)
	}
	builder := sema.New()
	prog, perr := parser.Parse(src, inputPath, builder)
	if perr != nil {
		return perr
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "cfrontc: emitting IR\n")
	}
	mod := ir.Emit(prog, triple)

	out := os.Stdout
	if outputPath != "" {
		f, ferr := os.Create(outputPath)
		if ferr != nil {
			return ferr
		}
		defer f.Close()
		out = f
	}
	return ir.Dump(out, mod)
}
