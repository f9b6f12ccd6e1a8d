package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/a64sim/a64sim/loader"
)

// Version information - can be overridden at build time
var Version = "dev"

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		verboseMode = flag.Bool("verbose", false, "Verbose output")
		listSymbols = flag.Bool("symbols", false, "Print the symbol table after assembly")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("a64sim assembler %s\n", Version)
		os.Exit(0)
	}
	if *showHelp || flag.NArg() != 2 {
		printHelp()
		if *showHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	srcFile := flag.Arg(0)
	outFile := flag.Arg(1)

	words, program, err := loader.AssembleFile(srcFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Assembly error:\n%v\n", err)
		os.Exit(1)
	}

	if *verboseMode {
		fmt.Printf("Assembled %d instructions, %d labels\n",
			len(program.Instructions), program.SymbolTable.Len())
	}
	if *listSymbols {
		for _, sym := range program.SymbolTable.All() {
			fmt.Printf("%-30s 0x%08X\n", sym.Name, sym.Value)
		}
	}

	if err := loader.WriteImage(outFile, words); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf(`a64sim assembler %s

Usage: assemble [options] <input-source> <output-binary>

Translates mnemonic assembly source into a flat little-endian stream
of 32-bit instruction words.

Options:
  -help      Show this help message
  -version   Show version information
  -verbose   Enable verbose output
  -symbols   Print the symbol table after assembly

Examples:
  assemble program.s program.bin
  assemble -verbose -symbols program.s program.bin
`, Version)
}
