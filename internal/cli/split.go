package cli

import (
	"fmt"
	"os"
	"path/filepath"
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
var (
	splitThreshold int
	splitShares    int
	splitSecret    string
	splitOutDir    string
	splitQR        bool
)

// splitCmd splits a secret into Shamir shares.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a secret into threshold shares",
	Long: `Split a secret into N shares such that any K of them reconstruct it
and any K-1 reveal nothing about it.

The secret may come from --secret, or an interactive prompt when omitted.
Shares print to stdout by default; use --out to write one file per share.`,
	Example: `  shamirmpc split --threshold 3 --shares 5 --secret "correct horse battery staple"
  shamirmpc split -k 2 -n 3 --out ./shares
  shamirmpc split -k 3 -n 5 --qr`,
	RunE: runSplit,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	splitCmd.GroupID = groupShare
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().IntVarP(&splitThreshold, "threshold", "k", 0, "number of shares required to reconstruct (required)")
	splitCmd.Flags().IntVarP(&splitShares, "shares", "n", 0, "total number of shares to generate (required)")
	splitCmd.Flags().StringVar(&splitSecret, "secret", "", "secret to split (prompted interactively if omitted)")
	splitCmd.Flags().StringVar(&splitOutDir, "out", "", "directory to write one share file per share")
	splitCmd.Flags().BoolVar(&splitQR, "qr", false, "display the first share as a terminal QR code")

	_ = splitCmd.MarkFlagRequired("threshold")
	_ = splitCmd.MarkFlagRequired("shares")
}

func runSplit(cmd *cobra.Command, _ []string) (err error) {
	start := time.Now()
	defer func() {
		metrics.Global.RecordSplit(time.Since(start), err)
	}()

	if splitThreshold < 2 {
		return sigilerr.ErrInvalidThreshold
	}
	if splitShares < splitThreshold {
		return sigilerr.WithSuggestion(sigilerr.ErrInvalidThreshold, "--shares must be >= --threshold")
	}

	secret, err := secretToSplit()
	if err != nil {
		return err
	}
	defer secmem.Wipe(secret)

	shares, err := sss.Split(secret, splitThreshold, splitShares)
	if err != nil {
		return err
	}
	defer func() {
		for i := range shares {
			sss.Wipe(&shares[i])
		}
	}()

	encoded := make([]string, len(shares))
	for i := range shares {
		e, encErr := sss.EncodeShare(&shares[i])
		if encErr != nil {
			return encErr
		}
		encoded[i] = e
	}

	if splitOutDir != "" {
		if err := writeShareFiles(splitOutDir, encoded); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if formatter != nil && formatter.Format() == output.FormatJSON {
		return displaySplitJSON(w, encoded)
	}
	displaySplitText(w, encoded)

	if splitQR && output.CanRenderQR(w) {
		cfg := output.DefaultQRConfig()
		outln(w)
		outln(w, "QR code for share 1:")
		_ = output.RenderQR(w, encoded[0], cfg)
	}

	return nil
}

// secretToSplit resolves the secret to split from the --secret flag or an
// interactive prompt, in that order.
func secretToSplit() ([]byte, error) {
	if splitSecret != "" {
		return []byte(splitSecret), nil
	}
	return promptSecretFn()
}

// writeShareFiles writes one file per encoded share into dir, named
// share-<n>.txt (1-based, matching the share's position in the list).
func writeShareFiles(dir string, encoded []string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for i, e := range encoded {
		path := filepath.Join(dir, fmt.Sprintf("share-%d.txt", i+1))
		if err := fileutil.WriteAtomic(path, []byte(e+"\n"), 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// displaySplitText shows the generated shares in text format.
func displaySplitText(w interface {
	Write(p []byte) (n int, err error)
}, encoded []string,
) {
	outln(w)
	out(w, "Secret split into %d shares (threshold %d):\n", len(encoded), splitThreshold)
	outln(w)
	for i, e := range encoded {
		out(w, "Share %d:\n  %s\n\n", i+1, e)
	}
	if splitOutDir != "" {
		out(w, "Shares written to %s\n", splitOutDir)
	}
}

// displaySplitJSON shows the generated shares in JSON format.
func displaySplitJSON(w interface {
	Write(p []byte) (n int, err error)
}, encoded []string,
) error {
	payload := struct {
		Threshold int      `json:"threshold"`
		Shares    []string `json:"shares"`
	}{
		Threshold: splitThreshold,
		Shares:    encoded,
	}
	return writeJSON(w, payload)
}
