// Package sss implements Shamir's Secret Sharing over GF(2^8): splitting a
// secret byte string into N shares such that any K reconstruct it and any
// K-1 reveal nothing about it.
package sss

import (
	"strconv"

	"github.com/mrz1836/shamir-mpc/internal/polynomial"
	"github.com/mrz1836/shamir-mpc/internal/secmem"
	"github.com/mrz1836/shamir-mpc/pkg/errors"
)

// MaxLength is the largest secret (and share payload) length this package
// accepts, in bytes. The wider value-length range callers may expect is
// honored by the share buffer as [1, 32]; a caller asking for more gets
// InvalidParam rather than a silent truncation.
const MaxLength = 32

// MaxParties is the largest share index/party count, one byte wide.
const MaxParties = 255

// Share is a single share of a split secret: the evaluation of L
// byte-parallel polynomials at x = Index. The field layout is load-bearing
// — Index, Threshold, Length, Data — mirroring the specification's
// in-memory representation exactly.
type Share struct {
	Index     byte     // x-coordinate, 1-based; 0 would reveal the secret
	Threshold byte     // K, the number of shares required to reconstruct
	Length    int      // number of meaningful bytes in Data
	Data      [32]byte // P_j(Index) for j in [0, Length)
}

// Validate checks a Share's invariants in isolation: Index != 0, Threshold
// >= 2, and Length within [1, MaxLength].
func (s *Share) Validate() error {
	if s == nil {
		return errors.ErrInvalidParam
	}
	if s.Index == 0 {
		return errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "index 0 is reserved for the secret"})
	}
	if s.Threshold < 2 {
		return errors.ErrInvalidThreshold
	}
	if s.Length < 1 || s.Length > MaxLength {
		return errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "length out of range"})
	}
	return nil
}

// Wipe zeroes a Share's data and resets its metadata, using the
// compiler-opaque wipe primitive so a share's bytes never linger after the
// caller is done with it.
func Wipe(s *Share) {
	if s == nil {
		return
	}
	secmem.Wipe(s.Data[:])
	s.Index = 0
	s.Threshold = 0
	s.Length = 0
}

// Split divides secret into n shares, any k of which reconstruct it. One
// polynomial of degree k-1 is built per byte of secret, with the secret
// byte as its constant term; the polynomial is wiped before moving to the
// next byte.
func Split(secret []byte, k, n int) ([]Share, error) {
	switch {
	case len(secret) < 1 || len(secret) > MaxLength:
		return nil, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "secret length out of range"})
	case k < 2:
		return nil, errors.ErrInvalidThreshold
	case n < k:
		return nil, errors.WithDetails(errors.ErrInvalidThreshold, map[string]string{"reason": "n must be >= k"})
	case n < 1 || n > MaxParties:
		return nil, errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "n out of range"})
	}

	shares := make([]Share, n)
	for i := range shares {
		shares[i].Index = byte(i + 1)
		shares[i].Threshold = byte(k)
		shares[i].Length = len(secret)
	}

	for j, b := range secret {
		p, err := polynomial.New(b, k-1, secmem.Reader)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCrypto, "sampling polynomial for byte %d: %v", j, err)
		}

		for i := range shares {
			shares[i].Data[j] = p.Eval(shares[i].Index)
		}

		p.Wipe()
	}

	return shares, nil
}

// Combine reconstructs a secret from shares. The threshold and length are
// taken from shares[0] and every other share must agree; duplicate indices
// are rejected.
func Combine(shares []Share) ([]byte, error) {
	n := len(shares)
	if n == 0 {
		return nil, errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "no shares provided"})
	}

	k := int(shares[0].Threshold)
	length := shares[0].Length

	if n < k {
		return nil, errors.WithDetails(errors.ErrReconstructionFailed, map[string]string{
			"reason": "fewer shares than threshold",
			"have":   strconv.Itoa(n),
			"need":   strconv.Itoa(k),
		})
	}

	seen := make(map[byte]bool, n)
	xs := make([]byte, n)
	for i := range shares {
		s := &shares[i]
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if int(s.Threshold) != k {
			return nil, errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "threshold mismatch across shares"})
		}
		if s.Length != length {
			return nil, errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "length mismatch across shares"})
		}
		if seen[s.Index] {
			return nil, errors.ErrDuplicateShare
		}
		seen[s.Index] = true
		xs[i] = s.Index
	}

	secret := make([]byte, length)
	ys := make([]byte, n)
	for j := 0; j < length; j++ {
		for i := range shares {
			ys[i] = shares[i].Data[j]
		}
		secret[j] = polynomial.Interpolate(xs, ys, n)
	}

	return secret, nil
}
