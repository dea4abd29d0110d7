package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/handlegen/emit"
	"github.com/wippyai/handlegen/model"
	"github.com/wippyai/handlegen/synth"
	"github.com/wippyai/handlegen/unique"
	"github.com/wippyai/handlegen/wasmapi"
)

type config struct {
	modelFile   string
	outFile     string
	checkFile   string
	emit        emit.Config
	opts        synth.Options
	list        bool
	interactive bool
	verbose     bool
}

func main() {
	var cfg config
	flag.StringVar(&cfg.modelFile, "model", "", "Path to the JSON command model")
	flag.StringVar(&cfg.outFile, "out", "", "Write generated Go source to this file (default stdout)")
	flag.StringVar(&cfg.emit.Package, "pkg", "api", "Package name of the generated file")
	flag.StringVar(&cfg.emit.StructPackage, "structs", "", "Import path declaring the opaque structure types")
	flag.StringVar(&cfg.opts.StripPrefix, "strip", "", "Prefix removed from command and type names")
	flag.BoolVar(&cfg.opts.DisableEnhanced, "disable-enhanced", false, "Generate Basic variants only")
	flag.BoolVar(&cfg.opts.NoSmartHandle, "no-smart-handle", false, "Do not generate owning handles")
	flag.BoolVar(&cfg.opts.WideHandles, "wide", false, "Allow implicit conversion of 64-bit handles")
	flag.BoolVar(&cfg.opts.Compatibility, "compat", false, "Also expose Basic variants shadowed by Enhanced ones")
	flag.IntVar(&cfg.opts.Parallelism, "j", 0, "Commands synthesized in parallel (0 = GOMAXPROCS)")
	flag.StringVar(&cfg.checkFile, "check", "", "Compare the exports of a wasm module with the model")
	flag.BoolVar(&cfg.list, "list", false, "List synthesized variants and exit")
	flag.BoolVar(&cfg.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&cfg.verbose, "v", false, "Verbose logging")
	flag.Parse()

	if cfg.modelFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: handlegen -model <api.json> [-out file.go] [-pkg name] [-strip prefix]")
		fmt.Fprintln(os.Stderr, "       handlegen -model <api.json> -list")
		fmt.Fprintln(os.Stderr, "       handlegen -model <api.json> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       handlegen -model <api.json> -check <module.wasm>")
		os.Exit(1)
	}

	log := zap.NewNop()
	if cfg.verbose {
		if l, err := zap.NewDevelopment(); err == nil {
			log = l
		}
	}
	defer func() { _ = log.Sync() }()
	synth.SetLogger(log)
	unique.SetLogger(log)
	wasmapi.SetLogger(log)

	if err := run(context.Background(), cfg, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config, stdout, stderr io.Writer) error {
	m, err := model.LoadFile(cfg.modelFile)
	if err != nil {
		return err
	}

	if cfg.checkFile != "" {
		return check(ctx, m, cfg.checkFile, stdout)
	}

	out, err := synth.Generate(ctx, m, cfg.opts)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}
	for _, e := range multierr.Errors(out.Err()) {
		fmt.Fprintf(stderr, "warning: %v\n", e)
	}

	switch {
	case cfg.interactive:
		return runInteractive(out, cfg.modelFile)
	case cfg.list:
		printList(stdout, out, newPalette(isTerminal(stdout)))
		return nil
	}

	if cfg.outFile == "" {
		return emit.Write(stdout, out, cfg.emit)
	}
	src, err := emit.Source(out, cfg.emit)
	if err != nil {
		return err
	}
	if err := os.WriteFile(cfg.outFile, src, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.outFile, err)
	}
	fmt.Fprintf(stderr, "wrote %s (%d commands, %d handle types)\n", cfg.outFile, len(out.Commands), len(out.Handles))
	return nil
}

func check(ctx context.Context, m *model.Model, wasmFile string, stdout io.Writer) error {
	data, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}
	lib, err := wasmapi.Instantiate(ctx, data, nil)
	if err != nil {
		return err
	}
	defer lib.Close(ctx)

	if err := lib.Check(m); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintf(stdout, "  %v\n", e)
		}
		return fmt.Errorf("%s: %d of %d commands do not match", wasmFile, len(multierr.Errors(err)), len(m.Commands))
	}
	fmt.Fprintf(stdout, "%s: all %d commands match\n", wasmFile, len(m.Commands))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
