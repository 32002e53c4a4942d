// Command csvparse converts a CSV file (or stdin) into a JSON array of
// records keyed by the header row.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/csvrecords/internal/config"
	"github.com/JonMunkholm/csvrecords/internal/core"
	"github.com/JonMunkholm/csvrecords/internal/logging"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run returns the process exit code: 0 on success, 1 when the input is
// rejected or cannot be read, 2 on bad usage.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("csvparse", flag.ContinueOnError)
	fs.SetOutput(stderr)
	coercion := fs.String("coercion", "", "Value coercion: raw or typed (default from PARSE_VALUE_COERCION)")
	encoding := fs.String("encoding", "", "Input encoding: utf-8, utf-16, latin1, windows-1252")
	pretty := fs.Bool("pretty", false, "Indent JSON output")
	verbose := fs.Bool("verbose", false, "Log progress to stderr")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: csvparse [flags] [file]\n\nReads stdin when no file is given.\n\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	level := "warn"
	if *verbose {
		level = "debug"
	}
	slog.SetDefault(logging.New(stderr, level, "text"))

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	service, err := core.NewService(nil, cfg.Parse)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	req := core.ParseRequest{
		Name:     "stdin",
		Input:    stdin,
		Coercion: *coercion,
		Encoding: *encoding,
	}
	if fs.NArg() == 1 {
		path := fs.Arg(0)
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(stderr, "Error reading input file: %v\n", err)
			return 1
		}
		defer f.Close()
		req.Name = filepath.Base(path)
		req.Input = f
	}

	result, err := service.Parse(context.Background(), req)
	if err != nil {
		slog.Debug("parse failed", "error", err)
		fmt.Fprintf(stderr, "Error: %s\n", core.FormatUserError(err))
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetEscapeHTML(false)
	if *pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(result.Records); err != nil {
		fmt.Fprintf(stderr, "Error writing output: %v\n", err)
		return 1
	}
	return 0
}
