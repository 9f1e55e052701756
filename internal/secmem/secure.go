// Package secmem provides the secure-memory primitives the core crypto
// packages lean on: a CSPRNG reader, an mlock-backed buffer for secrets
// that outlive a single function call, a compiler-opaque wipe, a
// constant-time comparison, and age-based at-rest encryption for
// exported share bundles. None of this is part of the GF(256)/SSS/MPC
// core itself — it is the external collaborator (CSPRNG, secure
// allocator, zeroization primitive, constant-time compare) that the
// core depends on but does not implement.
package secmem

import (
	"crypto/subtle"
	"runtime"
	"sync"
)

// SecureBytes is a wrapper for sensitive byte slices that provides
// mlock-backed memory handling with explicit, finalizer-backstopped
// zeroing.
type SecureBytes struct {
	data   []byte
	locked bool
	mu     sync.Mutex
}

// NewSecureBytes creates a new SecureBytes of the given size. The memory
// is locked via mlock/VirtualLock if the platform and process limits
// allow it; locking failure is not fatal; the buffer is still usable,
// just swappable.
func NewSecureBytes(size int) (*SecureBytes, error) {
	data := make([]byte, size)

	sb := &SecureBytes{data: data}
	sb.locked = mlock(data)

	runtime.SetFinalizer(sb, func(s *SecureBytes) {
		s.Destroy()
	})

	return sb, nil
}

// SecureBytesFromSlice copies data into a new SecureBytes.
func SecureBytesFromSlice(data []byte) (*SecureBytes, error) {
	sb, err := NewSecureBytes(len(data))
	if err != nil {
		return nil, err
	}
	copy(sb.data, data)
	return sb, nil
}

// Bytes returns the underlying slice, or nil once Destroy has run.
func (s *SecureBytes) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

// IsLocked reports whether the backing memory is mlocked.
func (s *SecureBytes) IsLocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.locked
}

// Len returns the length of the data, or 0 once destroyed.
func (s *SecureBytes) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return 0
	}
	return len(s.data)
}

// Destroy wipes the memory and unlocks it. Safe to call more than once.
func (s *SecureBytes) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		return
	}

	wipe(s.data)

	if s.locked {
		munlock(s.data)
		s.locked = false
	}

	s.data = nil
	runtime.SetFinalizer(s, nil)
}

// Wipe overwrites every byte of buf with zero using a write the compiler
// cannot prove is dead and therefore cannot elide, regardless of whether
// buf is read again afterward. Every routine that materializes secret
// intermediates (polynomial coefficients, share copies, reconstructed
// MPC products) must call this before returning, on every return path.
func Wipe(buf []byte) {
	wipe(buf)
}

// ConstantTimeEqual reports whether a and b hold the same bytes, taking
// time that depends only on len(a) and len(b), never on where they first
// differ. Returns false immediately (still constant-time in content) if
// the lengths differ.
func ConstantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
