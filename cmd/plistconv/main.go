// Command plistconv converts property lists between the binary and ASCII
// formats, optionally wrapping the result in a compression envelope.
//
// Usage:
//
//	plistconv [--to FORMAT] [--compress ALGO] [--decompress ALGO] [-o OUTPUT] INPUT
//
// Decoder limits and the log level come from the environment:
// PLIST_MAX_OBJECTS, PLIST_MAX_LENGTH, PLIST_MAX_DEPTH and PLIST_LOG_LEVEL.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alexflint/go-arg"
	goenv "go-simpler.org/env"

	"github.com/arloliu/plist/internal/log"
)

func main() {
	logger := log.New(os.Stderr, log.Warn)

	var cfg env
	if err := goenv.Load(&cfg, nil); err != nil {
		logger.Fatalf("environment: %v", err)
	}
	level, err := cfg.level()
	if err != nil {
		logger.Fatalf("PLIST_LOG_LEVEL: %v", err)
	}
	logger.SetLevel(level)

	var a args
	arg.MustParse(&a)

	if logger.Check(run(logger, cfg, a)) {
		os.Exit(1)
	}
}

func run(logger *log.Logger, cfg env, a args) error {
	conv, err := newConverter(logger, cfg)
	if err != nil {
		return err
	}

	data, err := readInput(a.Input)
	if err != nil {
		return fmt.Errorf("read %s: %w", a.Input, err)
	}

	out, err := conv.convert(data, a)
	if err != nil {
		return fmt.Errorf("%s: %w", a.Input, err)
	}

	if err := writeOutput(a.Output, out); err != nil {
		return fmt.Errorf("write %s: %w", a.Output, err)
	}

	return nil
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}

	return os.ReadFile(name)
}

func writeOutput(name string, data []byte) error {
	if name == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}

	return os.WriteFile(name, data, 0o644)
}
