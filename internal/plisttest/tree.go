// Package plisttest generates random value trees for round-trip tests.
package plisttest

import (
	"fmt"
	"time"

	"lukechampine.com/frand"

	"github.com/arloliu/plist/section"
	"github.com/arloliu/plist/value"
)

// AllScalars lists every scalar kind.
var AllScalars = []value.Kind{
	value.KindNull,
	value.KindBool,
	value.KindInteger,
	value.KindReal,
	value.KindDate,
	value.KindData,
	value.KindString,
	value.KindUID,
}

var alphabet = []rune("abcXYZ019 _-.\"\\\n\té€☃\U0001F600")

// Generator builds random trees from a seeded RNG, so failures replay.
type Generator struct {
	rng      *frand.RNG
	scalars  []value.Kind
	maxDepth int
	maxLen   int

	// sharePercent is the chance that a position reuses a node built
	// earlier in the same tree; built holds the candidates.
	sharePercent int
	built        []*value.Value
}

// NewGenerator creates a Generator seeded with seed. scalars restricts the
// leaf kinds; nil means AllScalars.
func NewGenerator(seed string, scalars []value.Kind) *Generator {
	if len(scalars) == 0 {
		scalars = AllScalars
	}

	s := make([]byte, 32)
	copy(s, seed)

	return &Generator{
		rng:      frand.NewCustom(s, 1024, 12),
		scalars:  scalars,
		maxDepth: 4,
		maxLen:   8,
	}
}

// WithSharing makes percent of all positions reuse a node built earlier in
// the same tree, containers included, so trees become DAGs with nested
// sharing. Only finished nodes are reused, never an ancestor, so trees stay
// acyclic.
func (g *Generator) WithSharing(percent int) *Generator {
	g.sharePercent = percent
	return g
}

// Tree returns a random tree whose root is an array or a dictionary.
func (g *Generator) Tree() *value.Value {
	g.built = g.built[:0]

	if g.rng.Intn(2) == 0 {
		return g.array(0)
	}

	return g.dict(0)
}

func (g *Generator) node(depth int) *value.Value {
	if len(g.built) > 0 && g.rng.Intn(100) < g.sharePercent {
		return g.built[g.rng.Intn(len(g.built))]
	}

	if depth < g.maxDepth {
		switch g.rng.Intn(5) {
		case 0:
			return g.array(depth)
		case 1:
			return g.dict(depth)
		}
	}

	return g.finish(g.Scalar())
}

func (g *Generator) array(depth int) *value.Value {
	arr := value.Array()
	for range g.rng.Intn(g.maxLen) {
		arr.Append(g.node(depth + 1))
	}

	return g.finish(arr)
}

func (g *Generator) dict(depth int) *value.Value {
	d := value.Dict()
	for range g.rng.Intn(g.maxLen) {
		d.Set(g.Word(), g.node(depth+1))
	}

	return g.finish(d)
}

func (g *Generator) finish(v *value.Value) *value.Value {
	if g.sharePercent > 0 {
		g.built = append(g.built, v)
	}

	return v
}

// Doubling returns a DAG of depth arrays, each holding the level below
// twice, over leaf. It has depth+1 distinct nodes but 2^depth paths.
func Doubling(leaf *value.Value, depth int) *value.Value {
	n := leaf
	for range depth {
		n = value.Array(n, n)
	}

	return n
}

// Scalar returns a random leaf of one of the generator's scalar kinds.
func (g *Generator) Scalar() *value.Value {
	kind := g.scalars[g.rng.Intn(len(g.scalars))]
	switch kind {
	case value.KindNull:
		return value.Null()
	case value.KindBool:
		return value.Bool(g.rng.Intn(2) == 1)
	case value.KindInteger:
		return value.Int(g.integer())
	case value.KindReal:
		// Quarters print exactly in every text form.
		return value.Real(float64(g.integer()%1_000_000) / 4)
	case value.KindDate:
		secs := int64(g.rng.Intn(2_000_000_000))
		return value.Date(section.ReferenceDate.Add(time.Duration(secs) * time.Second))
	case value.KindData:
		return value.Data(g.rng.Bytes(g.rng.Intn(40)))
	case value.KindString:
		return value.String(g.Word())
	case value.KindUID:
		return value.UID(g.rng.Bytes(1 + g.rng.Intn(section.MaxUIDSize)))
	default:
		panic(fmt.Sprintf("plisttest: no generator for %s", kind))
	}
}

// Word returns a random string, sometimes empty, sometimes outside ASCII.
func (g *Generator) Word() string {
	n := g.rng.Intn(12)
	out := make([]rune, n)
	for i := range out {
		out[i] = alphabet[g.rng.Intn(len(alphabet))]
	}

	return string(out)
}

// integer spreads values over every encoded width.
func (g *Generator) integer() int64 {
	u := g.rng.Uint64n(1 << 63)
	i := int64(u >> (8 * g.rng.Intn(8))) //nolint:gosec
	if g.rng.Intn(2) == 0 {
		return -i
	}

	return i
}

// Clone returns a deep copy of v that shares no container or byte slice
// with v. Nodes shared within v stay shared within the copy.
func Clone(v *value.Value) *value.Value {
	return cloneInto(v, make(map[*value.Value]*value.Value))
}

func cloneInto(v *value.Value, copies map[*value.Value]*value.Value) *value.Value {
	if c, ok := copies[v]; ok {
		return c
	}

	var out *value.Value
	switch v.Kind() {
	case value.KindArray:
		elems, _ := v.AsArray()
		out = value.Array()
		for _, e := range elems {
			out.Append(cloneInto(e, copies))
		}
	case value.KindDictionary:
		out = value.Dict()
		for _, k := range v.Keys() {
			out.Set(k, cloneInto(v.Get(k), copies))
		}
	case value.KindData:
		b, _ := v.AsData()
		out = value.Data(append([]byte{}, b...))
	case value.KindUID:
		b, _ := v.AsUID()
		out = value.UID(append([]byte{}, b...))
	default:
		out = v
	}
	copies[v] = out

	return out
}
