package bplist

import (
	"github.com/arloliu/plist/internal/options"
)

const (
	// DefaultMaxObjectCount bounds the object table of decoded and encoded plists.
	DefaultMaxObjectCount = 1 << 20
	// DefaultMaxLength bounds a single decoded length: bytes for data and
	// strings, elements for containers.
	DefaultMaxLength = 64 << 20
	// DefaultMaxDepth bounds container nesting.
	DefaultMaxDepth = 512
)

// DecoderConfig holds the limits a Decoder enforces before allocating.
// It is immutable once the decoder is built, so a Decoder is safe for
// concurrent use.
type DecoderConfig struct {
	maxObjectCount int
	maxLength      int
	maxDepth       int
}

// NewDecoderConfig creates a DecoderConfig with default limits.
func NewDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		maxObjectCount: DefaultMaxObjectCount,
		maxLength:      DefaultMaxLength,
		maxDepth:       DefaultMaxDepth,
	}
}

// MaxObjectCount returns the largest accepted trailer object count.
func (c *DecoderConfig) MaxObjectCount() int { return c.maxObjectCount }

// MaxLength returns the largest accepted record length.
func (c *DecoderConfig) MaxLength() int { return c.maxLength }

// MaxDepth returns the deepest accepted container nesting.
func (c *DecoderConfig) MaxDepth() int { return c.maxDepth }

// DecoderOption is a functional option for configuring Decoder.
type DecoderOption = options.Option[*DecoderConfig]

// WithMaxObjectCount rejects inputs whose trailer declares more than n objects.
// Default is DefaultMaxObjectCount.
func WithMaxObjectCount(n int) DecoderOption {
	return options.New(func(cfg *DecoderConfig) error {
		if err := options.Positive("max object count", n); err != nil {
			return err
		}
		cfg.maxObjectCount = n

		return nil
	})
}

// WithMaxLength rejects any data, string or container record longer than n.
// Default is DefaultMaxLength.
func WithMaxLength(n int) DecoderOption {
	return options.New(func(cfg *DecoderConfig) error {
		if err := options.Positive("max length", n); err != nil {
			return err
		}
		cfg.maxLength = n

		return nil
	})
}

// WithMaxDepth rejects containers nested deeper than n levels.
// Default is DefaultMaxDepth.
func WithMaxDepth(n int) DecoderOption {
	return options.New(func(cfg *DecoderConfig) error {
		if err := options.Positive("max depth", n); err != nil {
			return err
		}
		cfg.maxDepth = n

		return nil
	})
}

// EncoderConfig holds the limits an Encoder enforces.
type EncoderConfig struct {
	maxObjectCount int
	maxDepth       int
}

// NewEncoderConfig creates an EncoderConfig with default limits.
func NewEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		maxObjectCount: DefaultMaxObjectCount,
		maxDepth:       DefaultMaxDepth,
	}
}

// EncoderOption is a functional option for configuring Encoder.
type EncoderOption = options.Option[*EncoderConfig]

// WithEncoderMaxObjectCount fails encoding when the deduplicated object
// table would exceed n objects. Default is DefaultMaxObjectCount.
func WithEncoderMaxObjectCount(n int) EncoderOption {
	return options.New(func(cfg *EncoderConfig) error {
		if err := options.Positive("max object count", n); err != nil {
			return err
		}
		cfg.maxObjectCount = n

		return nil
	})
}

// WithEncoderMaxDepth fails encoding of trees nested deeper than n levels.
// Default is DefaultMaxDepth.
func WithEncoderMaxDepth(n int) EncoderOption {
	return options.New(func(cfg *EncoderConfig) error {
		if err := options.Positive("max depth", n); err != nil {
			return err
		}
		cfg.maxDepth = n

		return nil
	})
}
