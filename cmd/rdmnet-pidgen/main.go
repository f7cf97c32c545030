// Command rdmnet-pidgen generates the RDM parameter name tables of
// pkg/rdm from pids.yaml.
//
// Usage:
//
//	rdmnet-pidgen -in pids.yaml -out pid_names.go [-package rdm]
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/tools/imports"
)

func main() {
	in := flag.String("in", "", "Path to the PID YAML file")
	out := flag.String("out", "", "Path of the generated Go file")
	pkg := flag.String("package", "rdm", "Package name of the generated file")
	flag.Parse()

	if *in == "" || *out == "" {
		fmt.Fprintln(os.Stderr, "Usage: rdmnet-pidgen -in <pids.yaml> -out <file.go> [-package <name>]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if err := run(*in, *out, *pkg); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(in, out, pkg string) error {
	file, err := LoadPIDFile(in)
	if err != nil {
		return fmt.Errorf("loading %s: %w", in, err)
	}
	code, err := Generate(file, pkg, filepath.Base(in))
	if err != nil {
		return fmt.Errorf("generating: %w", err)
	}
	if err := writeFormatted(out, code); err != nil {
		return err
	}
	fmt.Printf("  generated %s (%d parameters)\n", out, len(file.Parameters))
	return nil
}

// writeFormatted formats Go source with goimports and writes it to path.
func writeFormatted(path string, code string) error {
	formatted, err := imports.Process(path, []byte(code), nil)
	if err != nil {
		// Keep the raw output for debugging the template.
		_ = os.WriteFile(path+".broken", []byte(code), 0o644)
		return fmt.Errorf("goimports %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, formatted, 0o644)
}
