package main

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"github.com/arloliu/plist"
	"github.com/arloliu/plist/ascii"
	"github.com/arloliu/plist/bplist"
	"github.com/arloliu/plist/compress"
	"github.com/arloliu/plist/format"
	"github.com/arloliu/plist/internal/log"
	"github.com/arloliu/plist/value"
)

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	SortKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// converter runs one conversion with fixed limits.
type converter struct {
	log     *log.Logger
	decoder *bplist.Decoder
	parser  *ascii.Parser
	encoder *bplist.Encoder
}

func newConverter(logger *log.Logger, cfg env) (*converter, error) {
	decoder, err := bplist.NewDecoder(
		bplist.WithMaxObjectCount(cfg.MaxObjects),
		bplist.WithMaxLength(cfg.MaxLength),
		bplist.WithMaxDepth(cfg.MaxDepth),
	)
	if err != nil {
		return nil, err
	}

	parser, err := ascii.NewParser(ascii.WithMaxDepth(cfg.MaxDepth))
	if err != nil {
		return nil, err
	}

	encoder, err := bplist.NewEncoder(
		bplist.WithEncoderMaxObjectCount(cfg.MaxObjects),
		bplist.WithEncoderMaxDepth(cfg.MaxDepth),
	)
	if err != nil {
		return nil, err
	}

	return &converter{log: logger, decoder: decoder, parser: parser, encoder: encoder}, nil
}

// decode reads a plist in either format.
func (c *converter) decode(data []byte) (*value.Value, format.Format, error) {
	if plist.IsBinary(data) {
		v, err := c.decoder.Decode(data)
		return v, format.FormatBinary, err
	}

	v, err := c.parser.Parse(data)

	return v, format.FormatASCII, err
}

// render writes v in the requested output format. targetAuto picks the
// format opposite to the input.
func (c *converter) render(v *value.Value, in format.Format, to target) ([]byte, error) {
	if to == targetAuto {
		to = targetBinary
		if in == format.FormatBinary {
			to = targetApple
		}
		c.log.Debugf("output format %s", to)
	}

	switch to {
	case targetBinary:
		return c.encoder.Encode(v)
	case targetApple:
		return ascii.Marshal(v, format.DialectApple)
	case targetGnuStep:
		return ascii.Marshal(v, format.DialectGnuStep)
	case targetYAML:
		return yaml.Marshal(v.Native())
	case targetDump:
		return []byte(dumpConfig.Sdump(v.Native())), nil
	default:
		return nil, fmt.Errorf("unknown output format %q", to)
	}
}

// convert runs the whole pipeline: decompress, decode, render, compress.
func (c *converter) convert(data []byte, a args) ([]byte, error) {
	if ct := a.Decompress.Type(); ct != format.CompressionNone {
		out, err := plist.Decompress(data, ct)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", ct, err)
		}
		c.log.Debugf("decompressed %d -> %d bytes", len(data), len(out))
		data = out
	}

	v, in, err := c.decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s input: %w", in, err)
	}
	c.log.Infof("decoded %s plist, root %s with %d entries", in, v.Kind(), v.Len())

	out, err := c.render(v, in, a.To)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	if ct := a.Compress.Type(); ct != format.CompressionNone {
		packed, err := plist.Compress(out, ct)
		if err != nil {
			return nil, fmt.Errorf("compress %s: %w", ct, err)
		}
		stats := compress.NewCompressionStats(ct, out, packed)
		if stats.SpaceSavings() < 0 {
			c.log.Warnf("compressed with %s: output grew from %d to %d bytes",
				ct, stats.OriginalSize, stats.CompressedSize)
		} else {
			c.log.Infof("compressed with %s: %d -> %d bytes (%.1f%% saved)",
				ct, stats.OriginalSize, stats.CompressedSize, stats.SpaceSavings())
		}
		out = packed
	}

	return out, nil
}
