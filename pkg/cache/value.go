package cache

import "sync/atomic"

// Value is a refcounted immutable byte buffer. The cache holds one reference
// for as long as the entry is live; every Get adds one more. The bytes stay
// valid until all references are released, which lets a reader finish writing
// a response from a value whose entry has already been evicted.
type Value struct {
	buf  []byte
	refs atomic.Int32
}

// newValue copies data into a fresh buffer with the cache's own reference.
func newValue(data []byte) *Value {
	v := &Value{buf: append([]byte(nil), data...)}
	v.refs.Store(1)
	return v
}

// Bytes returns the value contents. The slice must not be modified and must
// not be used after Release.
func (v *Value) Bytes() []byte {
	return v.buf
}

// Len returns the value length in bytes.
func (v *Value) Len() int {
	return len(v.buf)
}

// Release drops the caller's reference. Safe on nil.
func (v *Value) Release() {
	v.release()
}

func (v *Value) retain() {
	v.refs.Add(1)
}

func (v *Value) release() {
	if v == nil {
		return
	}
	if v.refs.Add(-1) == 0 {
		// Last reference gone. Drop the buffer so use-after-release is
		// loud instead of silently reading stale data.
		v.buf = nil
	}
}

// Refs reports the current reference count. Intended for tests.
func (v *Value) Refs() int32 {
	return v.refs.Load()
}
