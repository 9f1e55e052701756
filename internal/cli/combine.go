package cli

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/shamir-mpc/internal/fileutil"
	"github.com/mrz1836/shamir-mpc/internal/metrics"
	"github.com/mrz1836/shamir-mpc/internal/output"
	"github.com/mrz1836/shamir-mpc/internal/secmem"
	"github.com/mrz1836/shamir-mpc/internal/sss"
	sigilerr "github.com/mrz1836/shamir-mpc/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var combineOut string

// combineCmd reconstructs a secret from shares.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var combineCmd = &cobra.Command{
	Use:   "combine <share> [share...]",
	Short: "Reconstruct a secret from shares",
	Long: `Reconstruct a secret from at least K shares produced by split.

Each argument is either an encoded share string (shamir-v1-...) or a path
to a file containing one. Fewer than the threshold, duplicate indices, or
shares whose threshold or length differ are all rejected. Shares carry no
split identifier, so shares of different splits that agree on threshold and
length are not detected and combine to a wrong secret.`,
	Example: `  shamirmpc combine shamir-v1-3-1-a1b2c3 shamir-v1-3-2-d4e5f6 shamir-v1-3-3-071829
  shamirmpc combine ./shares/share-1.txt ./shares/share-2.txt ./shares/share-3.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCombine,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	combineCmd.GroupID = groupShare
	rootCmd.AddCommand(combineCmd)

	combineCmd.Flags().StringVar(&combineOut, "out", "", "write the reconstructed secret to this file instead of stdout")
}

func runCombine(cmd *cobra.Command, args []string) (err error) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordCombine(time.Since(start), err)
	}()

	shares := make([]sss.Share, len(args))
	for i, a := range args {
		s, err := decodeShareArg(a)
		if err != nil {
			return err
		}
		shares[i] = s
	}
	defer func() {
		for i := range shares {
			sss.Wipe(&shares[i])
		}
	}()

	secret, err := sss.Combine(shares)
	if err != nil {
		return err
	}
	defer secmem.Wipe(secret)

	if combineOut != "" {
		if err := fileutil.WriteAtomic(combineOut, secret, 0o600); err != nil {
			return sigilerr.Wrap(sigilerr.ErrMemory, "writing reconstructed secret: %v", err)
		}
		out(cmd.OutOrStdout(), "Secret written to %s\n", combineOut)
		return nil
	}

	w := cmd.OutOrStdout()
	if formatter != nil && formatter.Format() == output.FormatJSON {
		return writeJSON(w, struct {
			Secret string `json:"secret"`
		}{Secret: string(secret)})
	}

	outln(w)
	out(w, "Reconstructed secret: %s\n", secret)
	return nil
}

// decodeShareArg decodes a share from a literal encoded string or, if the
// argument names an existing file, from that file's contents.
func decodeShareArg(arg string) (sss.Share, error) {
	if data, err := os.ReadFile(arg); err == nil { //nolint:gosec // operator-supplied path, by design
		return sss.DecodeShare(strings.TrimSpace(string(data)))
	}
	return sss.DecodeShare(strings.TrimSpace(arg))
}
