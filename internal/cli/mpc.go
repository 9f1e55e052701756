package cli

import (
	"encoding/json"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrz1836/shamir-mpc/internal/fileutil"
	"github.com/mrz1836/shamir-mpc/internal/metrics"
	"github.com/mrz1836/shamir-mpc/internal/mpc"
	"github.com/mrz1836/shamir-mpc/internal/output"
	"github.com/mrz1836/shamir-mpc/internal/secmem"
	"github.com/mrz1836/shamir-mpc/internal/sss"
	sigilerr "github.com/mrz1836/shamir-mpc/pkg/errors"
)

// shareBundle is the on-disk JSON form of an mpc.Context plus all of its
// shares, the unit that mpc subcommands read and write. A bundle holds
// every party's share for one secret value, mirroring the in-memory
// layout the original demo harnesses keep in a single process.
type shareBundle struct {
	NumParties    int      `json:"num_parties"`
	Threshold     int      `json:"threshold"`
	ComputationID int      `json:"computation_id"`
	ValueSize     int      `json:"value_size"`
	Shares        []string `json:"shares"`
}

// mpcCmd is the parent command for MPC arithmetic over shares.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcCmd = &cobra.Command{
	Use:   "mpc",
	Short: "Run honest-but-curious MPC operations on shares",
	Long: `Run honest-but-curious multi-party computations directly on Shamir
shares, without ever reassembling the underlying values.

Each subcommand reads one or more share bundles (produced by "mpc init")
and writes a result bundle, keeping inputs secret except for whatever the
operation necessarily reveals (a sum, an average, a maximum, a comparison).`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	mpcInitParties       int
	mpcInitThreshold     int
	mpcInitValueSize     int
	mpcInitSecret        string
	mpcInitOut           string
	mpcInitComputationID int

	mpcOpOut string
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create MPC shares of a value",
	Long: `Create a new MPC session and split a private value into shares for
every party, writing the result as a share bundle file.

Bundles that will be combined by add, sub, scale, mul, sum, average, max,
or greater must belong to the same session: pass the same --computation-id
to every "mpc init" call that contributes a value, matching the shared
session tag every party would hold in a real multi-party run.`,
	Example: `  shamirmpc mpc init --parties 5 --threshold 3 --secret 80 --computation-id 7 --out salary-alice.json
  shamirmpc mpc init -n 5 -k 3 --secret 95 --computation-id 7 --out salary-bob.json
  shamirmpc mpc init -n 7 -k 4 --secret 1 --out vote-director-a.json`,
	RunE: runMPCInit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcAddCmd = &cobra.Command{
	Use:     "add <bundle-x> <bundle-y>",
	Short:   "Compute shares of X + Y",
	Long:    `Add two share bundles from the same MPC session pointwise, producing shares of X + Y without revealing X or Y.`,
	Example: `  shamirmpc mpc add x.json y.json --out sum.json`,
	Args:    cobra.ExactArgs(2),
	RunE:    runMPCAdd,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcSubCmd = &cobra.Command{
	Use:     "sub <bundle-x> <bundle-y>",
	Short:   "Compute shares of X - Y",
	Long:    `Subtract two share bundles from the same MPC session pointwise, producing shares of X - Y without revealing X or Y.`,
	Example: `  shamirmpc mpc sub x.json y.json --out diff.json`,
	Args:    cobra.ExactArgs(2),
	RunE:    runMPCSub,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcScaleCmd = &cobra.Command{
	Use:     "scale <bundle> <constant>",
	Short:   "Compute shares of X * c for a public constant c",
	Long:    `Multiply a share bundle by a public constant, producing shares of c*X without revealing X.`,
	Example: `  shamirmpc mpc scale x.json 3 --out scaled.json`,
	Args:    cobra.ExactArgs(2),
	RunE:    runMPCScale,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcMulCmd = &cobra.Command{
	Use:   "mul <bundle-x> <bundle-y>",
	Short: "Compute shares of X * Y",
	Long: `Multiply two share bundles from the same MPC session, producing new
shares of X * Y via reveal-and-reshare. This requires at least 2K-1 shares
per bundle and the aggregator running this command learns the intermediate
product X*Y — it is not a true degree-reduction protocol.`,
	Example: `  shamirmpc mpc mul x.json y.json --out product.json`,
	Args:    cobra.ExactArgs(2),
	RunE:    runMPCMul,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcSumCmd = &cobra.Command{
	Use:     "sum <bundle> [bundle...]",
	Short:   "Compute shares of the sum of several values",
	Long:    `Sum any number of share bundles from the same MPC session, producing shares of the total without revealing any individual value.`,
	Example: `  shamirmpc mpc sum a.json b.json c.json --out total.json`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runMPCSum,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcAverageCmd = &cobra.Command{
	Use:     "average <bundle> [bundle...]",
	Short:   "Reveal the average of several private values",
	Long: `Compute and reveal the average of several share bundles, leaking only the
average and never an individual value. The sum behind the average is formed
with GF(256) field addition (XOR) across the shares, not integer addition, so
the revealed average generally differs from the true integer average of the
inputs except in degenerate cases (e.g. identical values).`,
	Example: `  shamirmpc mpc average alice.json bob.json carol.json`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runMPCAverage,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcMaxCmd = &cobra.Command{
	Use:     "max <bundle> [bundle...]",
	Short:   "Reveal the maximum of several private values",
	Long:    `Reveal the maximum of several share bundles and the index of the winner, without revealing the other values.`,
	Example: `  shamirmpc mpc max bid1.json bid2.json bid3.json`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    runMPCMax,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var mpcGreaterCmd = &cobra.Command{
	Use:     "greater <bundle-x> <bundle-y>",
	Short:   "Reveal whether X > Y",
	Long:    `Reveal only the boolean result of comparing two share bundles, never the values themselves.`,
	Example: `  shamirmpc mpc greater x.json y.json`,
	Args:    cobra.ExactArgs(2),
	RunE:    runMPCGreater,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	mpcCmd.GroupID = groupMPC
	rootCmd.AddCommand(mpcCmd)

	mpcCmd.AddCommand(mpcInitCmd, mpcAddCmd, mpcSubCmd, mpcScaleCmd, mpcMulCmd, mpcSumCmd, mpcAverageCmd, mpcMaxCmd, mpcGreaterCmd)

	mpcInitCmd.Flags().IntVarP(&mpcInitParties, "parties", "n", 0, "number of parties (required)")
	mpcInitCmd.Flags().IntVarP(&mpcInitThreshold, "threshold", "k", 0, "reconstruction threshold (required)")
	mpcInitCmd.Flags().IntVar(&mpcInitValueSize, "value-size", 1, "value length in bytes")
	mpcInitCmd.Flags().StringVar(&mpcInitSecret, "secret", "", "value to share, as an unsigned integer (required)")
	mpcInitCmd.Flags().StringVar(&mpcInitOut, "out", "", "file to write the share bundle to (required)")
	mpcInitCmd.Flags().IntVar(&mpcInitComputationID, "computation-id", -1,
		"session tag (0-255) shared by every bundle in a multi-value computation (default: random, starts a new session)")
	_ = mpcInitCmd.MarkFlagRequired("parties")
	_ = mpcInitCmd.MarkFlagRequired("threshold")
	_ = mpcInitCmd.MarkFlagRequired("secret")
	_ = mpcInitCmd.MarkFlagRequired("out")

	for _, c := range []*cobra.Command{mpcAddCmd, mpcSubCmd, mpcScaleCmd, mpcMulCmd, mpcSumCmd, mpcAverageCmd, mpcMaxCmd, mpcGreaterCmd} {
		c.Flags().StringVar(&mpcOpOut, "out", "", "file to write the result bundle to (operations that reveal a value ignore this)")
	}
}

func runMPCInit(cmd *cobra.Command, _ []string) error {
	bitSize := mpcInitValueSize * 8
	if bitSize > 64 {
		bitSize = 64
	}
	secretVal, err := strconv.ParseUint(mpcInitSecret, 10, bitSize)
	if err != nil {
		return sigilerr.WithSuggestion(sigilerr.ErrInvalidParam, "--secret must be an unsigned integer fitting in --value-size bytes")
	}

	ctx, err := mpc.InitContext(byte(mpcInitParties), byte(mpcInitThreshold), mpcInitValueSize)
	if err != nil {
		return err
	}
	defer mpc.Cleanup(ctx)

	if mpcInitComputationID >= 0 {
		if mpcInitComputationID > 255 {
			return sigilerr.WithSuggestion(sigilerr.ErrInvalidParam, "--computation-id must be between 0 and 255")
		}
		ctx.ComputationID = byte(mpcInitComputationID)
	}

	secretBytes := uintToBytes(secretVal, mpcInitValueSize)
	defer secmem.Wipe(secretBytes)

	shares, err := mpc.CreateShares(ctx, secretBytes)
	if err != nil {
		return err
	}
	defer wipeShares(shares)

	if err := saveBundle(mpcInitOut, ctx, shares); err != nil {
		return err
	}

	out(cmd.OutOrStdout(), "Created %d shares (threshold %d) for value in %s\n", ctx.NumParties, ctx.Threshold, mpcInitOut)
	return nil
}

func runMPCAdd(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("add", err) }()
	return runPairwise(cmd, args[0], args[1], mpc.SecureAdd)
}

func runMPCSub(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("sub", err) }()
	return runPairwise(cmd, args[0], args[1], mpc.SecureSub)
}

// runPairwise loads two bundles sharing a context and applies op, writing
// the result bundle to --out. It is the common shape of add, sub and mul.
func runPairwise(cmd *cobra.Command, pathX, pathY string, op func(*mpc.Context, []mpc.Share, []mpc.Share) ([]mpc.Share, error)) error {
	ctx, x, err := loadBundle(pathX)
	if err != nil {
		return err
	}
	defer wipeShares(x)

	_, y, err := loadBundle(pathY)
	if err != nil {
		return err
	}
	defer wipeShares(y)

	result, err := op(ctx, x, y)
	if err != nil {
		return err
	}
	defer wipeShares(result)

	if mpcOpOut == "" {
		return sigilerr.WithSuggestion(sigilerr.ErrInvalidParam, "--out is required")
	}
	if err := saveBundle(mpcOpOut, ctx, result); err != nil {
		return err
	}

	out(cmd.OutOrStdout(), "Result written to %s\n", mpcOpOut)
	return nil
}

func runMPCScale(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("mul_const", err) }()

	constant, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil {
		return sigilerr.WithSuggestion(sigilerr.ErrInvalidParam, "constant must fit in a single byte")
	}

	ctx, x, err := loadBundle(args[0])
	if err != nil {
		return err
	}
	defer wipeShares(x)

	result, err := mpc.SecureMulConst(ctx, x, byte(constant))
	if err != nil {
		return err
	}
	defer wipeShares(result)

	if mpcOpOut == "" {
		return sigilerr.WithSuggestion(sigilerr.ErrInvalidParam, "--out is required")
	}
	if err := saveBundle(mpcOpOut, ctx, result); err != nil {
		return err
	}

	out(cmd.OutOrStdout(), "Result written to %s\n", mpcOpOut)
	return nil
}

func runMPCMul(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("mul", err) }()
	return runPairwise(cmd, args[0], args[1], mpc.SecureMul)
}

func runMPCSum(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("sum", err) }()

	ctx, sets, err := loadBundleSets(args)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sets {
			wipeShares(s)
		}
	}()

	result, err := mpc.SecureSum(ctx, sets)
	if err != nil {
		return err
	}
	defer wipeShares(result)

	if mpcOpOut == "" {
		return sigilerr.WithSuggestion(sigilerr.ErrInvalidParam, "--out is required")
	}
	if err := saveBundle(mpcOpOut, ctx, result); err != nil {
		return err
	}

	out(cmd.OutOrStdout(), "Result written to %s\n", mpcOpOut)
	return nil
}

func runMPCAverage(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("average", err) }()

	ctx, sets, err := loadBundleSets(args)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sets {
			wipeShares(s)
		}
	}()

	avg, err := mpc.SecureAverage(ctx, sets)
	if err != nil {
		return err
	}
	metrics.Global.RecordReveal()

	w := cmd.OutOrStdout()
	if formatter != nil && formatter.Format() == output.FormatJSON {
		return writeJSON(w, struct {
			Average uint64 `json:"average"`
		}{Average: avg})
	}
	out(w, "Average: %d\n", avg)
	return nil
}

func runMPCMax(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("max", err) }()

	ctx, sets, err := loadBundleSets(args)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sets {
			wipeShares(s)
		}
	}()

	value, index, err := mpc.SecureMax(ctx, sets)
	if err != nil {
		return err
	}
	metrics.Global.RecordReveal()

	w := cmd.OutOrStdout()
	if formatter != nil && formatter.Format() == output.FormatJSON {
		return writeJSON(w, struct {
			Value uint64 `json:"value"`
			Index int    `json:"index"`
		}{Value: value, Index: index})
	}
	out(w, "Maximum: %d (bundle %d: %s)\n", value, index+1, args[index])
	return nil
}

func runMPCGreater(cmd *cobra.Command, args []string) (err error) {
	defer func() { metrics.Global.RecordSecureOp("greater", err) }()

	ctx, x, err := loadBundle(args[0])
	if err != nil {
		return err
	}
	defer wipeShares(x)

	_, y, err := loadBundle(args[1])
	if err != nil {
		return err
	}
	defer wipeShares(y)

	greater, err := mpc.SecureGreater(ctx, x, y)
	if err != nil {
		return err
	}
	metrics.Global.RecordReveal()

	w := cmd.OutOrStdout()
	if formatter != nil && formatter.Format() == output.FormatJSON {
		return writeJSON(w, struct {
			Greater bool `json:"greater"`
		}{Greater: greater})
	}
	out(w, "%s > %s: %t\n", args[0], args[1], greater)
	return nil
}

// saveBundle writes a context and its shares to path as JSON.
func saveBundle(path string, ctx *mpc.Context, shares []mpc.Share) error {
	encoded := make([]string, len(shares))
	for i := range shares {
		e, err := sss.EncodeShare(&shares[i].Inner)
		if err != nil {
			return err
		}
		encoded[i] = e
	}

	bundle := shareBundle{
		NumParties:    int(ctx.NumParties),
		Threshold:     int(ctx.Threshold),
		ComputationID: int(ctx.ComputationID),
		ValueSize:     ctx.ValueSize,
		Shares:        encoded,
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return sigilerr.Wrap(sigilerr.ErrMemory, "encoding bundle: %v", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0o600); err != nil {
		return sigilerr.Wrap(sigilerr.ErrMemory, "writing bundle: %v", err)
	}
	return nil
}

// loadBundle reads a share bundle and reconstructs its context and shares.
func loadBundle(path string) (*mpc.Context, []mpc.Share, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path, by design
	if err != nil {
		return nil, nil, sigilerr.Wrap(sigilerr.ErrInvalidParam, "reading bundle %s: %v", path, err)
	}

	var bundle shareBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, nil, sigilerr.Wrap(sigilerr.ErrInvalidParam, "parsing bundle %s: %v", path, err)
	}

	ctx := &mpc.Context{
		NumParties:    byte(bundle.NumParties),
		Threshold:     byte(bundle.Threshold),
		ComputationID: byte(bundle.ComputationID),
		ValueSize:     bundle.ValueSize,
	}

	shares := make([]mpc.Share, len(bundle.Shares))
	for i, e := range bundle.Shares {
		inner, err := sss.DecodeShare(e)
		if err != nil {
			return nil, nil, err
		}
		shares[i] = mpc.Share{
			Inner:         inner,
			PartyID:       inner.Index,
			ComputationID: ctx.ComputationID,
		}
	}

	return ctx, shares, nil
}

// loadBundleSets loads multiple bundles, requiring they share one context
// (parties, threshold, computation ID, value size all matching the first).
func loadBundleSets(paths []string) (*mpc.Context, [][]mpc.Share, error) {
	ctx, first, err := loadBundle(paths[0])
	if err != nil {
		return nil, nil, err
	}

	sets := make([][]mpc.Share, len(paths))
	sets[0] = first

	for i, path := range paths[1:] {
		other, shares, lerr := loadBundle(path)
		if lerr != nil {
			return nil, nil, lerr
		}
		if other.ComputationID != ctx.ComputationID || other.NumParties != ctx.NumParties ||
			other.Threshold != ctx.Threshold || other.ValueSize != ctx.ValueSize {
			return nil, nil, sigilerr.WithSuggestion(sigilerr.ErrInvalidShares, "bundles belong to different MPC sessions")
		}
		sets[i+1] = shares
	}

	return ctx, sets, nil
}

func wipeShares(shares []mpc.Share) {
	for i := range shares {
		mpc.Wipe(&shares[i])
	}
}

// uintToBytes renders v as a big-endian byte slice of length size.
func uintToBytes(v uint64, size int) []byte {
	b := make([]byte, size)
	for i := size - 1; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return b
}
