// Package hash computes xxHash64 content digests of scalar values.
//
// Two scalars that are value.Equal always have the same digest, so the
// digest can key a content-addressed object table. Unequal scalars may
// collide; callers confirm matches with value.Equal. Containers are not
// hashed: the object table identifies them by the IDs of their children.
package hash

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"

	"github.com/arloliu/plist/errs"
	"github.com/arloliu/plist/value"
)

// Scalar returns the content digest of a scalar v.
// It fails with errs.ErrEncoding for nil values and containers.
func Scalar(v *value.Value) (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: nil value", errs.ErrEncoding)
	}

	d := xxhash.New()
	var scratch [8]byte
	writeUint := func(u uint64) {
		binary.BigEndian.PutUint64(scratch[:], u)
		_, _ = d.Write(scratch[:])
	}
	writeBytes := func(b []byte) {
		writeUint(uint64(len(b)))
		_, _ = d.Write(b)
	}

	_, _ = d.Write([]byte{byte(v.Kind())})

	switch v.Kind() {
	case value.KindNull:
	case value.KindBool:
		b, _ := v.AsBool()
		if b {
			writeUint(1)
		} else {
			writeUint(0)
		}
	case value.KindInteger:
		i, _ := v.AsInt()
		writeUint(uint64(i)) //nolint:gosec
	case value.KindReal:
		f, _ := v.AsReal()
		writeUint(math.Float64bits(f))
	case value.KindDate:
		t, _ := v.AsDate()
		writeUint(uint64(t.Unix())) //nolint:gosec
		writeUint(uint64(t.Nanosecond()))
	case value.KindData:
		b, _ := v.AsData()
		writeBytes(b)
	case value.KindUID:
		b, _ := v.AsUID()
		writeBytes(b)
	case value.KindString:
		s, _ := v.AsString()
		return String(s), nil
	default:
		return 0, fmt.Errorf("%w: %s is not a scalar", errs.ErrEncoding, v.Kind())
	}

	return d.Sum64(), nil
}

// String returns the digest a value.String(s) node has. The binary encoder
// uses it for dictionary keys, which become string objects.
func String(s string) uint64 {
	var scratch [8]byte
	binary.BigEndian.PutUint64(scratch[:], uint64(len(s)))

	d := xxhash.New()
	_, _ = d.Write([]byte{byte(value.KindString)})
	_, _ = d.Write(scratch[:])
	_, _ = d.WriteString(s)

	return d.Sum64()
}
