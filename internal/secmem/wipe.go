package secmem

import "runtime"

// wipe zeroes buf byte by byte and pins buf alive across the loop with
// runtime.KeepAlive, so the compiler cannot prove the writes are dead
// and drop them even when the caller never reads buf again.
func wipe(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
	runtime.KeepAlive(buf)
}
