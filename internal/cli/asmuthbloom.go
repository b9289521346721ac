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
	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing/asmuthbloom"
)

func newAsmuthBloomCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "asmuth-bloom",
		Aliases: []string{"crt"},
		Short:   "Asmuth-Bloom Chinese Remainder Theorem secret sharing",
		Long: `Split an integer secret into residues modulo pairwise coprime moduli and
restore it from any limit of them with the Chinese Remainder Theorem.`,
	}
	cmd.AddCommand(newAsmuthBloomSplitCmd(cfg))
	cmd.AddCommand(newAsmuthBloomCombineCmd(cfg))
	return cmd
}

func newAsmuthBloomSplitCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "split",
		Short:   "Split an integer secret into residue fragments",
		Example: `  sharectl asmuth-bloom split --secret 1000000 --count 4 --limit 2`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSecret(cmd)
			if err != nil {
				return err
			}
			secret, err := parseInteger(text)
			if err != nil {
				return err
			}
			count := intFlag(cmd, "count", cfg.Settings.AsmuthBloom.Count)
			limit := intFlag(cmd, "limit", cfg.Settings.AsmuthBloom.Limit)

			engine, err := cfg.AsmuthBloomEngine()
			if err != nil {
				return err
			}
			fragments, err := engine.Share(secret, count, limit)
			if err != nil {
				return err
			}
			if len(fragments) > 0 {
				printVerbose(cmd, cfg, "split into %d residues, public prime %s",
					len(fragments), fragments[0].PublicPrime)
			}

			envs := asmuthbloom.Seal(fragments, limit)
			return printEnvelopes(cmd, cfg, secretsharing.SchemeAsmuthBloom, envs)
		},
	}
	cmd.Flags().String("secret", "", "decimal integer secret (read from stdin when empty or -)")
	cmd.Flags().IntP("count", "n", 0, "number of fragments to create")
	cmd.Flags().IntP("limit", "l", 0, "number of fragments required to restore")
	return cmd
}

func newAsmuthBloomCombineCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:     "combine [FRAGMENT...]",
		Short:   "Restore an integer secret from residue fragments",
		Example: `  sharectl asmuth-bloom split --secret 1000000 | head -2 | sharectl asmuth-bloom combine`,
		RunE: func(cmd *cobra.Command, args []string) error {
			envs, err := readEnvelopes(cmd, args)
			if err != nil {
				return err
			}
			fragments, limit, err := asmuthbloom.Open(envs)
			if err != nil {
				return err
			}
			engine, err := cfg.AsmuthBloomEngine()
			if err != nil {
				return err
			}
			printVerbose(cmd, cfg, "restoring from %d fragments, limit %d", len(fragments), limit)

			secret, err := engine.Restore(fragments, limit)
			if err != nil {
				return err
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).
				PrintSecret(string(secretsharing.SchemeAsmuthBloom), secret.String())
		},
	}
}
