// Package mpc layers a small honest-but-curious secure multi-party
// computation protocol on top of internal/sss: a context describing a
// computation session, a Share wrapper tagging each SSS share with a party
// and computation ID, and pointwise arithmetic that lets independent
// parties combine shares of private inputs into shares of a result
// without revealing the inputs.
package mpc

import (
	"github.com/mrz1836/shamir-mpc/internal/field"
	"github.com/mrz1836/shamir-mpc/internal/secmem"
	"github.com/mrz1836/shamir-mpc/internal/sss"
	"github.com/mrz1836/shamir-mpc/pkg/errors"
)

// Context carries the configuration for one MPC session: the number of
// parties, the reconstruction threshold, the byte length of the values
// being computed, and a randomly drawn session tag that ties every share
// created under this context together.
type Context struct {
	NumParties    byte
	Threshold     byte
	ComputationID byte
	ValueSize     int
}

// Share wraps an sss.Share with the party holding it and the computation
// it belongs to, so a received share can be checked against a Context
// before it is used in arithmetic.
type Share struct {
	Inner         sss.Share
	PartyID       byte
	ComputationID byte
}

// InitContext sets up a new computation session. numParties must be in
// [2,255], threshold in [2, numParties], valueSize in [1, sss.MaxLength].
// The computation ID is drawn from the CSPRNG and is not a secret — it is
// a session identifier used to keep shares from distinct computations
// from being mixed.
func InitContext(numParties, threshold byte, valueSize int) (*Context, error) {
	if numParties < 2 {
		return nil, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "need at least 2 parties"})
	}
	if threshold < 2 || threshold > numParties {
		return nil, errors.ErrInvalidThreshold
	}
	if valueSize < 1 || valueSize > sss.MaxLength {
		return nil, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "value size out of range"})
	}

	tag, err := secmem.RandomBytes(1)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCrypto, "drawing computation id: %v", err)
	}

	return &Context{
		NumParties:    numParties,
		Threshold:     threshold,
		ComputationID: tag[0],
		ValueSize:     valueSize,
	}, nil
}

// Cleanup zeroes a Context's fields. Contexts carry no secret material
// beyond the computation tag, but zeroing it prevents stale tags from
// being mistaken for a live session.
func Cleanup(ctx *Context) {
	if ctx == nil {
		return
	}
	ctx.NumParties = 0
	ctx.Threshold = 0
	ctx.ComputationID = 0
	ctx.ValueSize = 0
}

// CreateShares splits secret into ctx.NumParties MPC shares via
// internal/sss.Split, tagging each with its party ID (1-based, matching
// the share index) and the context's computation ID.
func CreateShares(ctx *Context, secret []byte) ([]Share, error) {
	if ctx == nil {
		return nil, errors.ErrInvalidParam
	}
	if len(secret) != ctx.ValueSize {
		return nil, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "secret length does not match context value size"})
	}

	inner, err := sss.Split(secret, int(ctx.Threshold), int(ctx.NumParties))
	if err != nil {
		return nil, err
	}
	defer func() {
		for i := range inner {
			sss.Wipe(&inner[i])
		}
	}()

	shares := make([]Share, len(inner))
	for i := range inner {
		shares[i] = Share{
			Inner:         inner[i],
			PartyID:       inner[i].Index,
			ComputationID: ctx.ComputationID,
		}
	}

	return shares, nil
}

// Validate checks a Share against its owning Context: the party ID must
// be in range, the computation ID must match, and the inner share's
// length must equal the context's value size.
func Validate(ctx *Context, s *Share) error {
	if ctx == nil || s == nil {
		return errors.ErrInvalidParam
	}
	if s.PartyID < 1 || s.PartyID > ctx.NumParties {
		return errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "party id out of range"})
	}
	if s.ComputationID != ctx.ComputationID {
		return errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "computation id mismatch"})
	}
	if s.Inner.Length != ctx.ValueSize {
		return errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "value size mismatch"})
	}
	return s.Inner.Validate()
}

// Reconstruct recovers the secret behind a set of MPC shares, requiring at
// least ctx.Threshold of them and validating each against ctx before
// delegating to internal/sss.Combine.
func Reconstruct(ctx *Context, shares []Share) ([]byte, error) {
	if ctx == nil {
		return nil, errors.ErrInvalidParam
	}
	if len(shares) < int(ctx.Threshold) {
		return nil, errors.WithDetails(errors.ErrReconstructionFailed, map[string]string{"reason": "fewer shares than threshold"})
	}

	inner := make([]sss.Share, len(shares))
	for i := range shares {
		if err := Validate(ctx, &shares[i]); err != nil {
			return nil, err
		}
		inner[i] = shares[i].Inner
	}

	return sss.Combine(inner)
}

// Wipe zeroes an MPC share's inner SSS share and resets its metadata.
func Wipe(s *Share) {
	if s == nil {
		return
	}
	sss.Wipe(&s.Inner)
	s.PartyID = 0
	s.ComputationID = 0
}

func pairwiseValidate(ctx *Context, x, y []Share) error {
	if len(x) == 0 || len(x) != len(y) {
		return errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "share count mismatch"})
	}
	for i := range x {
		if err := Validate(ctx, &x[i]); err != nil {
			return err
		}
		if err := Validate(ctx, &y[i]); err != nil {
			return err
		}
		if x[i].PartyID != y[i].PartyID {
			return errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "party id mismatch between operands"})
		}
		if x[i].Inner.Length != y[i].Inner.Length {
			return errors.WithDetails(errors.ErrInvalidShares, map[string]string{"reason": "length mismatch between operands"})
		}
	}
	return nil
}

func newResultShare(ctx *Context, src *Share) Share {
	return Share{
		Inner: sss.Share{
			Index:     src.Inner.Index,
			Threshold: src.Inner.Threshold,
			Length:    src.Inner.Length,
		},
		PartyID:       src.PartyID,
		ComputationID: ctx.ComputationID,
	}
}

// SecureAdd computes shares of (X + Y) from shares of X and shares of Y,
// one party at a time: share_i(X) + share_i(Y) = share_i(X + Y) because
// addition is linear and both operands are evaluations of degree-(K-1)
// polynomials at the same point. No party learns X or Y.
func SecureAdd(ctx *Context, x, y []Share) ([]Share, error) {
	if err := pairwiseValidate(ctx, x, y); err != nil {
		return nil, err
	}

	out := make([]Share, len(x))
	for i := range x {
		out[i] = newResultShare(ctx, &x[i])
		for j := 0; j < x[i].Inner.Length; j++ {
			out[i].Inner.Data[j] = field.Add(x[i].Inner.Data[j], y[i].Inner.Data[j])
		}
	}
	return out, nil
}

// SecureSub computes shares of (X - Y). Subtraction is XOR in GF(2^8), so
// it is structurally identical to SecureAdd.
func SecureSub(ctx *Context, x, y []Share) ([]Share, error) {
	if err := pairwiseValidate(ctx, x, y); err != nil {
		return nil, err
	}

	out := make([]Share, len(x))
	for i := range x {
		out[i] = newResultShare(ctx, &x[i])
		for j := 0; j < x[i].Inner.Length; j++ {
			out[i].Inner.Data[j] = field.Sub(x[i].Inner.Data[j], y[i].Inner.Data[j])
		}
	}
	return out, nil
}

// SecureMulConst computes shares of (X * c) for a public constant c:
// c * share_i(X) = share_i(c * X), cheap because c is known to everyone
// and the result is still a degree-(K-1) sharing.
func SecureMulConst(ctx *Context, x []Share, constant byte) ([]Share, error) {
	if len(x) == 0 {
		return nil, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "no shares provided"})
	}
	for i := range x {
		if err := Validate(ctx, &x[i]); err != nil {
			return nil, err
		}
	}

	out := make([]Share, len(x))
	for i := range x {
		out[i] = newResultShare(ctx, &x[i])
		for j := 0; j < x[i].Inner.Length; j++ {
			out[i].Inner.Data[j] = field.Mul(x[i].Inner.Data[j], constant)
		}
	}
	return out, nil
}

// SecureMul computes shares of (X * Y). Pointwise multiplication of two
// degree-(K-1) sharings yields points on a degree-2(K-1) polynomial, so
// reconstructing from only K of them is not generally valid. This
// implementation follows the documented reveal-and-reshare contract: it
// reconstructs the pointwise product (requiring n >= 2K-1 shares for a
// mathematically faithful degree reduction) and reshares the recovered
// value under a fresh degree-(K-1) polynomial. The aggregator performing
// this call learns the intermediate product — this is not a true
// degree-reduction protocol (that requires Beaver triples or a BGW-style
// randomization step), and callers must treat the product as revealed.
func SecureMul(ctx *Context, x, y []Share) ([]Share, error) {
	if err := pairwiseValidate(ctx, x, y); err != nil {
		return nil, err
	}
	if len(x) < int(ctx.Threshold) {
		return nil, errors.WithDetails(errors.ErrReconstructionFailed, map[string]string{"reason": "fewer shares than threshold"})
	}
	minShares := 2*int(ctx.Threshold) - 1
	if len(x) < minShares {
		return nil, errors.WithDetails(errors.ErrReconstructionFailed, map[string]string{
			"reason": "secure_mul needs n >= 2K-1 for faithful degree reduction",
		})
	}

	intermediate := make([]Share, len(x))
	for i := range x {
		intermediate[i] = newResultShare(ctx, &x[i])
		intermediate[i].Inner.Threshold = ctx.Threshold
		for j := 0; j < x[i].Inner.Length; j++ {
			intermediate[i].Inner.Data[j] = field.Mul(x[i].Inner.Data[j], y[i].Inner.Data[j])
		}
	}

	product, err := Reconstruct(ctx, intermediate)
	for i := range intermediate {
		Wipe(&intermediate[i])
	}
	if err != nil {
		return nil, err
	}
	defer secmem.Wipe(product)

	return CreateShares(ctx, product)
}

// SecureSum computes shares of the sum of num_values private inputs by
// chaining SecureAdd, starting from the first value's shares.
func SecureSum(ctx *Context, sets [][]Share) ([]Share, error) {
	if len(sets) == 0 {
		return nil, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "no values provided"})
	}

	sum := make([]Share, len(sets[0]))
	copy(sum, sets[0])

	for _, set := range sets[1:] {
		next, err := SecureAdd(ctx, sum, set)
		if err != nil {
			return nil, err
		}
		sum = next
	}

	return sum, nil
}

// SecureAverage computes the sum of num_values private inputs, reveals it
// via Reconstruct, and returns the integer average using plain-domain
// division. The sum is reconstructed as a big-endian unsigned integer
// over the value's L bytes (for L=1 this is the original byte-wise
// semantics; for L>1 it generalizes that for L<=8, and returns
// ErrInvalidParam rather than silently truncating for L>8).
// Leakage is explicit: the sum is revealed, individual inputs are not.
func SecureAverage(ctx *Context, sets [][]Share) (uint64, error) {
	sum, err := SecureSum(ctx, sets)
	if err != nil {
		return 0, err
	}

	revealed, err := Reconstruct(ctx, sum)
	for i := range sum {
		Wipe(&sum[i])
	}
	if err != nil {
		return 0, err
	}
	defer secmem.Wipe(revealed)

	total, err := bytesToUint64(revealed)
	if err != nil {
		return 0, err
	}
	return total / uint64(len(sets)), nil
}

// SecureMax reconstructs every value in sets and returns the maximum
// value and its index. This is a reveal-based helper, not a secure
// comparison: production systems would use a comparison circuit that
// never materializes the inputs in the clear.
func SecureMax(ctx *Context, sets [][]Share) (value uint64, index int, err error) {
	if len(sets) == 0 {
		return 0, 0, errors.WithDetails(errors.ErrInvalidParam, map[string]string{"reason": "no values provided"})
	}

	values := make([]uint64, len(sets))
	for i, set := range sets {
		revealed, rerr := Reconstruct(ctx, set)
		if rerr != nil {
			return 0, 0, rerr
		}
		v, verr := bytesToUint64(revealed)
		secmem.Wipe(revealed)
		if verr != nil {
			return 0, 0, verr
		}
		values[i] = v
	}

	maxVal, maxIdx := values[0], 0
	for i, v := range values[1:] {
		if v > maxVal {
			maxVal = v
			maxIdx = i + 1
		}
	}

	return maxVal, maxIdx, nil
}

// SecureGreater reconstructs x and y and reports whether x > y. As with
// SecureMax, this is a reveal-based comparison, not a secure one.
func SecureGreater(ctx *Context, x, y []Share) (bool, error) {
	xv, err := Reconstruct(ctx, x)
	if err != nil {
		return false, err
	}
	defer secmem.Wipe(xv)

	yv, err := Reconstruct(ctx, y)
	if err != nil {
		return false, err
	}
	defer secmem.Wipe(yv)

	xn, err := bytesToUint64(xv)
	if err != nil {
		return false, err
	}
	yn, err := bytesToUint64(yv)
	if err != nil {
		return false, err
	}
	return xn > yn, nil
}

// bytesToUint64 interprets b as a big-endian unsigned integer. It rejects
// values wider than 8 bytes rather than silently shifting the high bytes
// out of a 64-bit accumulator.
func bytesToUint64(b []byte) (uint64, error) {
	if len(b) > 8 {
		return 0, errors.WithDetails(errors.ErrInvalidParam, map[string]string{
			"reason": "value size too large for integer reveal (max 8 bytes)",
		})
	}
	var v uint64
	for _, c := range b {
		v = v<<8 | uint64(c)
	}
	return v, nil
}
