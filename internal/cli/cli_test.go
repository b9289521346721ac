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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeremyhahn/go-secretshare/pkg/crypto/secretsharing"
)

// run executes sharectl with args and stdin and returns what it printed.
func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd(NewConfig())
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func lines(s string) []string {
	return strings.Fields(strings.TrimSpace(s))
}

func TestNewConfig_Defaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "text", cfg.OutputFormat)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.Metrics)
	assert.Nil(t, cfg.Settings)
	assert.NoError(t, cfg.Close())
}

func TestShamir_SplitCombine(t *testing.T) {
	out, stderr, err := run(t, "", "--rng", "seeded", "--seed", "7",
		"shamir", "split", "--secret", "42", "-n", "5", "-t", "3")
	require.NoError(t, err)
	assert.Contains(t, stderr, "seeded random source")

	fragments := lines(out)
	require.Len(t, fragments, 5)

	for _, method := range []string{methodElimination, methodInterpolation} {
		t.Run(method, func(t *testing.T) {
			subsets := [][]string{fragments[:3], fragments[2:], {fragments[4], fragments[0], fragments[2]}, fragments}
			for _, subset := range subsets {
				out, _, err := run(t, "", append([]string{"shamir", "combine", "-m", method}, subset...)...)
				require.NoError(t, err)
				assert.Equal(t, "42\n", out)
			}
		})
	}
}

func TestShamir_Stdin(t *testing.T) {
	out, _, err := run(t, "123456789\n", "shamir", "split", "-n", "4", "-t", "2")
	require.NoError(t, err)
	fragments := lines(out)
	require.Len(t, fragments, 4)

	out, _, err = run(t, strings.Join(fragments[1:3], "\n")+"\n", "shamir", "combine")
	require.NoError(t, err)
	assert.Equal(t, "123456789\n", out)
}

func TestShamir_DefaultsFromSettings(t *testing.T) {
	out, _, err := run(t, "", "shamir", "split", "--secret", "9")
	require.NoError(t, err)
	assert.Len(t, lines(out), 5)
}

func TestShamir_TooFewFragments(t *testing.T) {
	out, _, err := run(t, "", "shamir", "split", "--secret", "42", "-n", "5", "-t", "3")
	require.NoError(t, err)
	fragments := lines(out)

	_, _, err = run(t, "", "shamir", "combine", fragments[0], fragments[1])
	require.Error(t, err)
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientFragments)

	// a repeated fragment does not count twice
	_, _, err = run(t, "", "shamir", "combine", fragments[0], fragments[1], fragments[1])
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientFragments)
}

func TestShamir_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"threshold above count", []string{"shamir", "split", "--secret", "1", "-n", "2", "-t", "3"}, secretsharing.ErrThresholdOutOfRange},
		{"zero count", []string{"shamir", "split", "--secret", "1", "-n", "0", "-t", "0"}, secretsharing.ErrInvalidCount},
		{"negative secret", []string{"shamir", "split", "--secret=-5", "-n", "3", "-t", "2"}, secretsharing.ErrInvalidSecret},
		{"garbage fragment", []string{"shamir", "combine", "not-a-fragment"}, secretsharing.ErrInvalidFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, "", tt.args...)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, _, err := run(t, "", "shamir", "split", "--secret", "forty-two")
	assert.ErrorContains(t, err, "not a decimal integer")

	_, _, err = run(t, "", "shamir", "split")
	assert.ErrorContains(t, err, "no secret given")
}

func TestShamir_UnknownMethod(t *testing.T) {
	out, _, err := run(t, "", "shamir", "split", "--secret", "3", "-n", "2", "-t", "2")
	require.NoError(t, err)

	_, _, err = run(t, "", append([]string{"shamir", "combine", "--method", "guess"}, lines(out)...)...)
	assert.ErrorContains(t, err, "unknown method")
}

func TestShamir_JSON(t *testing.T) {
	out, _, err := run(t, "", "-o", "json", "shamir", "split", "--secret", "42", "-n", "5", "-t", "3")
	require.NoError(t, err)

	var result SplitResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "shamir", result.Scheme)
	assert.Equal(t, 3, result.Threshold)
	assert.Equal(t, 5, result.Count)
	assert.NotEmpty(t, result.ID)
	require.Len(t, result.Fragments, 5)

	out, _, err = run(t, "", append([]string{"-o", "json", "shamir", "combine"}, result.Fragments[1:4]...)...)
	require.NoError(t, err)

	var restored map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &restored))
	assert.Equal(t, "shamir", restored["scheme"])
	assert.Equal(t, "42", restored["secret"])
}

func TestAsmuthBloom_SplitCombine(t *testing.T) {
	out, _, err := run(t, "", "--rng", "seeded", "--seed", "11",
		"asmuth-bloom", "split", "--secret", "1000000", "--count", "4", "--limit", "2")
	require.NoError(t, err)
	fragments := lines(out)
	require.Len(t, fragments, 4)

	for i := range fragments {
		for j := i + 1; j < len(fragments); j++ {
			out, _, err := run(t, "", "asmuth-bloom", "combine", fragments[i], fragments[j])
			require.NoError(t, err)
			assert.Equal(t, "1000000\n", out)
		}
	}

	_, _, err = run(t, "", "crt", "combine", fragments[2])
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientFragments)
}

func TestAsmuthBloom_Table(t *testing.T) {
	out, _, err := run(t, "", "-o", "table", "asmuth-bloom", "split", "--secret", "77")
	require.NoError(t, err)
	assert.Contains(t, out, "Scheme: asmuth-bloom")
	assert.Contains(t, out, "Threshold: 2 of 4")
	assert.Contains(t, out, "FRAGMENT")
}

func TestCombine_WrongScheme(t *testing.T) {
	out, _, err := run(t, "", "asmuth-bloom", "split", "--secret", "5", "-n", "3", "-l", "2")
	require.NoError(t, err)

	_, _, err = run(t, "", append([]string{"shamir", "combine"}, lines(out)...)...)
	assert.ErrorIs(t, err, secretsharing.ErrMismatchedFragments)
}

func TestCombine_MixedSplits(t *testing.T) {
	first, _, err := run(t, "", "shamir", "split", "--secret", "5", "-n", "3", "-t", "2")
	require.NoError(t, err)
	second, _, err := run(t, "", "shamir", "split", "--secret", "5", "-n", "3", "-t", "2")
	require.NoError(t, err)

	_, _, err = run(t, "", "shamir", "combine", lines(first)[0], lines(second)[1])
	assert.ErrorIs(t, err, secretsharing.ErrMismatchedFragments)
}

func TestSSSA_SplitCombine(t *testing.T) {
	secret := "correct horse battery staple"
	out, _, err := run(t, "", "sssa", "split", "--secret", secret, "-n", "5", "-t", "3")
	require.NoError(t, err)
	shares := lines(out)
	require.Len(t, shares, 5)

	out, _, err = run(t, "", "sssa", "combine", shares[4], shares[1], shares[2])
	require.NoError(t, err)
	assert.Equal(t, secret+"\n", out)

	_, _, err = run(t, "", "sssa", "combine", shares[0], shares[1])
	assert.ErrorIs(t, err, secretsharing.ErrInsufficientFragments)
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "sharectl version "+Version)

	out, _, err = run(t, "", "-o", "json", "version")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, Version, info["version"])
}

func TestMetricsFlag(t *testing.T) {
	_, stderr, err := run(t, "", "--metrics", "shamir", "split", "--secret", "8", "-n", "3", "-t", "2")
	require.NoError(t, err)
	assert.Contains(t, stderr, "# TYPE secretshare_operations_total counter")
	assert.Contains(t, stderr, `secretshare_operations_total{operation="share",scheme="shamir",status="success"}`)
	assert.Contains(t, stderr, "# TYPE secretshare_operation_duration_seconds histogram")
	assert.NotContains(t, stderr, "go_goroutines")
}

func TestDumpMetrics_FiltersNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	own := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "secretshare", Name: "dump_total", Help: "test counter"})
	other := prometheus.NewCounter(prometheus.CounterOpts{Namespace: "other", Name: "dump_total", Help: "test counter"})
	reg.MustRegister(own, other)
	own.Add(3)
	other.Inc()

	var buf bytes.Buffer
	require.NoError(t, dumpMetrics(&buf, reg))
	assert.Contains(t, buf.String(), "# HELP secretshare_dump_total test counter")
	assert.Contains(t, buf.String(), "secretshare_dump_total 3")
	assert.NotContains(t, buf.String(), "other_dump_total")
}

func TestInvalidRNGMode(t *testing.T) {
	_, _, err := run(t, "", "--rng", "dice", "version")
	assert.Error(t, err)
}

func TestPrinter_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter("xml", &buf)
	assert.Error(t, p.PrintSecret("shamir", "1"))
	assert.Error(t, p.PrintSplit(&SplitResult{}))
	assert.NoError(t, p.PrintError(assert.AnError))
	assert.Contains(t, buf.String(), "Error:")
}

func TestVerboseLogsSettings(t *testing.T) {
	_, stderr, err := run(t, "", "-v", "--rng", "seeded", "version")
	require.NoError(t, err)
	assert.Contains(t, stderr, "settings loaded")
	assert.Contains(t, stderr, "rng=seeded")

	_, stderr, err = run(t, "", "version")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "settings loaded")
}
