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
	"math/big"

	"github.com/spf13/cobra"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing/shamir"
)

const (
	methodElimination   = "elimination"
	methodInterpolation = "interpolation"
)

func newShamirCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shamir",
		Short: "Shamir polynomial secret sharing",
		Long: `Split an integer secret into fragments over a prime field and restore it
from any threshold of them.`,
	}
	cmd.AddCommand(newShamirSplitCmd(cfg))
	cmd.AddCommand(newShamirCombineCmd(cfg))
	return cmd
}

func newShamirSplitCmd(cfg *Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split an integer secret into fragments",
		Example: `  sharectl shamir split --secret 42 --count 5 --threshold 3
  echo 42 | sharectl shamir split -n 5 -t 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readSecret(cmd)
			if err != nil {
				return err
			}
			secret, err := parseInteger(text)
			if err != nil {
				return err
			}
			count := intFlag(cmd, "count", cfg.Settings.Shamir.Count)
			threshold := intFlag(cmd, "threshold", cfg.Settings.Shamir.Threshold)

			engine, err := cfg.ShamirEngine()
			if err != nil {
				return err
			}
			fragments, modulus, err := engine.Share(secret, count, threshold)
			if err != nil {
				return err
			}
			printVerbose(cmd, cfg, "split into %d fragments over GF(%s)", len(fragments), modulus)

			envs := shamir.Seal(fragments, modulus, threshold)
			return printEnvelopes(cmd, cfg, secretsharing.SchemeShamir, envs)
		},
	}
	cmd.Flags().String("secret", "", "decimal integer secret (read from stdin when empty or -)")
	cmd.Flags().IntP("count", "n", 0, "number of fragments to create")
	cmd.Flags().IntP("threshold", "t", 0, "number of fragments required to restore")
	return cmd
}

func newShamirCombineCmd(cfg *Config) *cobra.Command {
	var method string
	cmd := &cobra.Command{
		Use:   "combine [FRAGMENT...]",
		Short: "Restore an integer secret from fragments",
		Long: `Restore an integer secret from fragments given as arguments or one per
line on stdin. The elimination method solves the linear system by Gaussian
elimination, the interpolation method uses Lagrange interpolation at zero.`,
		Example: `  sharectl shamir split --secret 42 | head -3 | sharectl shamir combine
  sharectl shamir combine --method interpolation FRAG1 FRAG2 FRAG3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			envs, err := readEnvelopes(cmd, args)
			if err != nil {
				return err
			}
			fragments, modulus, err := shamir.Open(envs)
			if err != nil {
				return err
			}
			engine, err := cfg.ShamirEngine()
			if err != nil {
				return err
			}

			printVerbose(cmd, cfg, "restoring from %d fragments by %s", len(fragments), method)
			var restore func([]shamir.Fragment, *big.Int) (*big.Int, error)
			switch method {
			case methodElimination:
				restore = engine.Restore
			case methodInterpolation:
				restore = engine.Interpolate
			default:
				return fmt.Errorf("unknown method %q (use %s or %s)", method, methodElimination, methodInterpolation)
			}
			secret, err := restore(fragments, modulus)
			if err != nil {
				return err
			}
			return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).
				PrintSecret(string(secretsharing.SchemeShamir), secret.String())
		},
	}
	cmd.Flags().StringVarP(&method, "method", "m", methodElimination,
		"restore method (elimination, interpolation)")
	return cmd
}

// printEnvelopes encodes envs and prints them as the result of a split.
func printEnvelopes(cmd *cobra.Command, cfg *Config, scheme secretsharing.Scheme, envs []*secretsharing.Envelope) error {
	result := &SplitResult{
		Scheme:    string(scheme),
		Count:     len(envs),
		Fragments: make([]string, len(envs)),
	}
	if len(envs) > 0 {
		result.ID = envs[0].ID.String()
		result.Threshold = envs[0].Threshold
	}
	for i, env := range envs {
		token, err := env.Encode()
		if err != nil {
			return err
		}
		result.Fragments[i] = token
	}
	return NewPrinter(cfg.OutputFormat, cmd.OutOrStdout()).PrintSplit(result)
}

// readEnvelopes parses every fragment token from args or stdin.
func readEnvelopes(cmd *cobra.Command, args []string) ([]*secretsharing.Envelope, error) {
	tokens, err := readTokens(cmd, args)
	if err != nil {
		return nil, err
	}
	envs := make([]*secretsharing.Envelope, len(tokens))
	for i, token := range tokens {
		env, err := secretsharing.ParseEnvelope(token)
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i+1, err)
		}
		envs[i] = env
	}
	return envs, nil
}
