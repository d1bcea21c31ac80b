package pool

import "sync"

// offsetSlicePool recycles the per-object offset slices built by the binary encoder.
var offsetSlicePool = sync.Pool{
	New: func() any { return &[]uint64{} },
}

// GetOffsetSlice retrieves a uint64 slice of exactly size elements from the pool.
//
// The caller must call the returned cleanup function to return the slice to
// the pool, typically with defer. The contents are not zeroed.
//
// Example:
//
//	offsets, cleanup := pool.GetOffsetSlice(objectCount)
//	defer cleanup()
func GetOffsetSlice(size int) ([]uint64, func()) {
	ptr, _ := offsetSlicePool.Get().(*[]uint64)
	slice := (*ptr)[:0]

	if cap(slice) < size {
		slice = make([]uint64, size)
	} else {
		slice = slice[:size]
	}
	*ptr = slice

	return slice, func() { offsetSlicePool.Put(ptr) }
}
