package main

import (
	"fmt"
	"strings"

	"github.com/arloliu/plist/format"
	"github.com/arloliu/plist/internal/log"
)

// target is the --to value.
type target string

const (
	targetAuto    target = ""
	targetBinary  target = "binary"
	targetApple   target = "apple"
	targetGnuStep target = "gnustep"
	targetYAML    target = "yaml"
	targetDump    target = "dump"
)

var targets = []target{targetBinary, targetApple, targetGnuStep, targetYAML, targetDump}

// UnmarshalText lets go-arg reject unknown targets while parsing flags.
func (t *target) UnmarshalText(b []byte) error {
	s := target(strings.ToLower(string(b)))
	for _, known := range targets {
		if s == known {
			*t = s
			return nil
		}
	}

	return fmt.Errorf("unknown output format %q", string(b))
}

// compression is a --compress or --decompress value.
type compression format.CompressionType

func (c *compression) UnmarshalText(b []byte) error {
	ct, ok := format.ParseCompression(strings.ToLower(string(b)))
	if !ok {
		return fmt.Errorf("unknown compression %q, want none, zstd, s2 or lz4", string(b))
	}
	*c = compression(ct)

	return nil
}

// Type returns the compression type, CompressionNone when the flag is unset.
func (c compression) Type() format.CompressionType {
	if c == 0 {
		return format.CompressionNone
	}

	return format.CompressionType(c)
}

type args struct {
	Input      string      `arg:"positional,required" help:"input plist, - for stdin"`
	Output     string      `arg:"-o,--output" default:"-" help:"output file, - for stdout"`
	To         target      `arg:"-t,--to" help:"output format: binary, apple, gnustep, yaml or dump (default: binary for text input, apple for binary input)"`
	Compress   compression `arg:"--compress" placeholder:"ALGO" help:"compress the output: none, zstd, s2 or lz4"`
	Decompress compression `arg:"--decompress" placeholder:"ALGO" help:"decompress the input before decoding"`
}

func (args) Description() string {
	return "plistconv converts property lists between the binary and ASCII formats.\n"
}

// env holds the settings read from the environment.
type env struct {
	MaxObjects int    `env:"PLIST_MAX_OBJECTS" default:"1048576" usage:"largest object count accepted in binary input"`
	MaxLength  int    `env:"PLIST_MAX_LENGTH" default:"67108864" usage:"largest declared record length accepted in binary input"`
	MaxDepth   int    `env:"PLIST_MAX_DEPTH" default:"512" usage:"deepest container nesting accepted"`
	LogLevel   string `env:"PLIST_LOG_LEVEL" default:"warn" usage:"off, fatal, error, warn, info or debug"`
}

func (e env) level() (log.Level, error) {
	return log.ParseLevel(e.LogLevel)
}
