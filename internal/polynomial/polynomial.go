// Package polynomial implements the random polynomials Shamir's Secret
// Sharing evaluates and interpolates over GF(2^8).
//
// A Polynomial holds one byte's worth of secret material: its constant
// term is the secret byte, its higher-degree coefficients are uniformly
// random and non-zero so the declared degree never accidentally
// collapses. Coefficients are transient — split owns one Polynomial per
// secret byte just long enough to evaluate it at every share index, then
// wipes it.
package polynomial

import (
	"fmt"
	"io"

	"github.com/mrz1836/shamir-mpc/internal/field"
	"github.com/mrz1836/shamir-mpc/internal/secmem"
)

// MaxDegree is the highest degree a Polynomial may hold (255 coefficient
// slots, indices 0..254 used, degree == d means d+1 active coefficients).
const MaxDegree = 254

// Polynomial is an ordered list of GF(2^8) coefficients a0..ad, stored in
// a fixed 255-slot array so wiping it always touches the same memory
// regardless of degree.
type Polynomial struct {
	coeffs [255]byte
	degree int
}

// New creates a random polynomial of the given degree with the given
// secret byte as its constant term. Every coefficient above the constant
// term is drawn uniformly from [1,255] (zero is rejected and redrawn) so
// the polynomial never silently collapses to a lower degree. degree must
// be in [0, MaxDegree].
func New(secret byte, degree int, rng io.Reader) (*Polynomial, error) {
	if degree < 0 || degree > MaxDegree {
		return nil, fmt.Errorf("polynomial: degree %d out of range [0,%d]", degree, MaxDegree)
	}

	p := &Polynomial{degree: degree}
	p.coeffs[0] = secret

	if degree > 0 {
		coeffs, err := randomNonZeroBytes(rng, degree)
		if err != nil {
			return nil, fmt.Errorf("polynomial: sampling coefficients: %w", err)
		}
		copy(p.coeffs[1:degree+1], coeffs)
	}

	return p, nil
}

// randomNonZeroBytes draws n bytes from rng, rejecting and redrawing any
// zero byte so every returned coefficient is in [1,255].
func randomNonZeroBytes(rng io.Reader, n int) ([]byte, error) {
	out := make([]byte, n)
	buf := make([]byte, 1)
	for i := 0; i < n; i++ {
		for {
			if _, err := io.ReadFull(rng, buf); err != nil {
				return nil, err
			}
			if buf[0] != 0 {
				out[i] = buf[0]
				break
			}
		}
	}
	return out, nil
}

// Degree returns the polynomial's degree.
func (p *Polynomial) Degree() int {
	return p.degree
}

// Eval evaluates the polynomial at x using Horner's method, starting from
// the highest-degree coefficient. Defined for all x in [0,255]; the
// dealer must never evaluate at x=0, since P(0) is the secret itself.
func (p *Polynomial) Eval(x byte) byte {
	r := p.coeffs[p.degree]
	for i := p.degree - 1; i >= 0; i-- {
		r = field.Add(field.Mul(r, x), p.coeffs[i])
	}
	return r
}

// Interpolate recovers P(0) — the secret byte — from n point/value pairs
// via Lagrange interpolation. The caller guarantees xs has no duplicates
// and no zero entries, and that n is at least the sharing threshold K;
// under those preconditions the result equals the original constant term
// for any true degree-(K-1) sharing.
func Interpolate(xs, ys []byte, n int) byte {
	var secret byte
	for i := 0; i < n; i++ {
		secret = field.Add(secret, field.Mul(ys[i], basisWeight(xs, n, i)))
	}
	return secret
}

// basisWeight computes the i-th Lagrange basis polynomial evaluated at
// x=0: product over j!=i of xs[j] / (xs[j] - xs[i]).
func basisWeight(xs []byte, n, i int) byte {
	weight := byte(1)
	for j := 0; j < n; j++ {
		if j == i {
			continue
		}
		num := xs[j]
		den := field.Sub(xs[j], xs[i])
		weight = field.Mul(weight, field.Div(num, den))
	}
	return weight
}

// Wipe overwrites every coefficient slot (all 255, regardless of degree)
// and resets the degree, using a compiler-opaque write so the optimizer
// cannot elide it.
func (p *Polynomial) Wipe() {
	secmem.Wipe(p.coeffs[:])
	p.degree = 0
}
