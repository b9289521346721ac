// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-secretshare.
//
// go-secretshare is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing/sssa"
	"github.com/jeremyhahn/go-secretshare/pkg/metrics"
)

func newSSSACmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sssa",
		Short: "Shamir sharing of text secrets",
		Long: `Split an arbitrary text secret into shares with sssa-golang and combine
any threshold of them back into the original text.`,
	}
	cmd.AddCommand(newSSSASplitCmd(cfg))
	cmd.AddCommand(newSSSACombineCmd(cfg))
	return cmd
}

func newSSSASplitCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "split",
		Short:   "Split a text secret into shares",
		Example: `  sharectl sssa split --secret "correct horse battery staple" -n 5 -t 3`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := readSecret(cmd)
			if err != nil {
				return err
			}
			total := intFlag(cmd, "count", cfg.Settings.SSSA.Count)
			threshold := intFlag(cmd, "threshold", cfg.Settings.SSSA.Threshold)

			shares, err := sssa.Split([]byte(secret), threshold, total)
			if err != nil {
				return err
			}
			printVerbose(cmd, cfg, "split %d bytes into %d shares", len(secret), len(shares))

			result := &SplitResult{
				Scheme:    metrics.SchemeSSSA,
				ID:        shares[0].ID.String(),
				Threshold: threshold,
				Count:     total,
				Fragments: make([]string, len(shares)),
			}
			for i, share := range shares {
				token, err := share.Encode()
				if err != nil {
					return err
				}
				result.Fragments[i] = token
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintSplit(result)
		},
	}
	cmd.Flags().String("secret", "", "text secret (read from stdin when empty or -)")
	cmd.Flags().IntP("count", "n", 0, "number of shares to create")
	cmd.Flags().IntP("threshold", "t", 0, "number of shares required to combine")
	return cmd
}

func newSSSACombineCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "combine [SHARE...]",
		Short: "Combine shares back into the text secret",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := readTokens(cmd, args)
			if err != nil {
				return err
			}
			shares := make([]*sssa.Share, len(tokens))
			for i, token := range tokens {
				share, err := sssa.ParseShare(token)
				if err != nil {
					return fmt.Errorf("share %d: %w", i+1, err)
				}
				shares[i] = share
			}
			printVerbose(cmd, cfg, "combining %d shares", len(shares))

			secret, err := sssa.Combine(shares)
			if err != nil {
				return err
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).
				PrintSecret(metrics.SchemeSSSA, string(secret))
		},
	}
}
