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
	"bufio"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the sharectl command tree around cfg
func NewRootCmd(cfg *Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sharectl",
		Short: "sharectl - Threshold secret sharing tool",
		Long: `sharectl splits secrets into fragments so that any threshold of them
restore the secret while fewer reveal nothing.

Supported schemes:
  - shamir:       polynomial sharing over a prime field (integer secrets)
  - asmuth-bloom: Chinese Remainder Theorem sharing (integer secrets)
  - sssa:         Shamir sharing of arbitrary text via sssa-golang

Fragments are printed as self-describing envelopes, one per line, and can
be piped straight back into the matching combine command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg.SeedSet = cmd.Flags().Changed("seed")
			return cfg.Resolve(cmd.ErrOrStderr())
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			defer func() { cfg.logger.MaybeError(cfg.Close()) }()
			if cfg.Metrics {
				return dumpMetrics(cmd.ErrOrStderr(), prometheus.DefaultGatherer)
			}
			return nil
		},
	}

	// Persistent flags (available to all commands)
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", "",
		"YAML settings file (defaults apply when empty)")
	flags.StringVarP(&cfg.OutputFormat, "output", "o", "text",
		"output format (text, json, table)")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false,
		"verbose output")
	flags.StringVar(&cfg.RNGMode, "rng", "",
		"random source (auto, software, seeded)")
	flags.Uint64Var(&cfg.Seed, "seed", 0,
		"seed for the seeded random source")
	flags.BoolVar(&cfg.Metrics, "metrics", false,
		"print collected metrics to stderr on exit")

	rootCmd.AddCommand(newVersionCmd(cfg))
	rootCmd.AddCommand(newShamirCmd(cfg))
	rootCmd.AddCommand(newAsmuthBloomCmd(cfg))
	rootCmd.AddCommand(newSSSACmd(cfg))
	return rootCmd
}

// Execute runs the root command and reports any error on stderr
func Execute() error {
	cfg := NewConfig()
	if err := NewRootCmd(cfg).Execute(); err != nil {
		printer := NewPrinter(cfg.OutputFormat, os.Stderr)
		_ = printer.PrintError(err) // Error printing to stderr is best-effort
		return err
	}
	return nil
}

// printVerbose prints a message if verbose mode is enabled
func printVerbose(cmd *cobra.Command, cfg *Config, format string, args ...interface{}) {
	if cfg.Verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "[VERBOSE] "+format+"\n", args...)
	}
}

// readSecret returns the --secret flag, or the first line of stdin when the
// flag is empty or "-".
func readSecret(cmd *cobra.Command) (string, error) {
	secret, _ := cmd.Flags().GetString("secret")
	if secret != "" && secret != "-" {
		return secret, nil
	}
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r\n"); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read secret from stdin: %w", err)
	}
	return "", fmt.Errorf("no secret given: use --secret or pipe it on stdin")
}

// parseInteger parses a non-negative decimal integer secret
func parseInteger(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("secret %q is not a decimal integer", s)
	}
	return n, nil
}

// readTokens returns args, or every whitespace separated token on stdin
// when no args were given.
func readTokens(cmd *cobra.Command, args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read fragments from stdin: %w", err)
	}
	tokens := strings.Fields(string(data))
	if len(tokens) == 0 {
		return nil, fmt.Errorf("no fragments given: pass them as arguments or on stdin")
	}
	return tokens, nil
}

// intFlag returns the named int flag, or fallback when it was not set
func intFlag(cmd *cobra.Command, name string, fallback int) int {
	if !cmd.Flags().Changed(name) {
		return fallback
	}
	v, _ := cmd.Flags().GetInt(name)
	return v
}
