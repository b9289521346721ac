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
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// OutputFormat defines the output format type
type OutputFormat string

const (
	OutputFormatText  OutputFormat = "text"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatTable OutputFormat = "table"
)

// SplitResult describes the fragments produced by a split command
type SplitResult struct {
	Scheme    string   `json:"scheme"`
	ID        string   `json:"id"`
	Threshold int      `json:"threshold"`
	Count     int      `json:"count"`
	Fragments []string `json:"fragments"`
}

// Printer handles formatted output
type Printer struct {
	format OutputFormat
	writer io.Writer
}

// NewPrinter creates a new Printer
func NewPrinter(format string, writer io.Writer) *Printer {
	return &Printer{
		format: OutputFormat(format),
		writer: writer,
	}
}

// PrintSplit prints the fragments of a split. Text output is one encoded
// fragment per line so it can be piped into a combine command.
func (p *Printer) PrintSplit(result *SplitResult) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(result)
	case OutputFormatTable:
		fmt.Fprintf(p.writer, "Scheme: %s  Split: %s  Threshold: %d of %d\n",
			result.Scheme, result.ID, result.Threshold, result.Count)
		fmt.Fprintf(p.writer, "%-4s %s\n", "#", "FRAGMENT")
		fmt.Fprintln(p.writer, strings.Repeat("-", 72))
		for i, f := range result.Fragments {
			fmt.Fprintf(p.writer, "%-4d %s\n", i+1, f)
		}
		return nil
	case OutputFormatText:
		for _, f := range result.Fragments {
			fmt.Fprintln(p.writer, f)
		}
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintSecret prints a restored secret
func (p *Printer) PrintSecret(scheme, secret string) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"scheme": scheme,
			"secret": secret,
		})
	case OutputFormatTable:
		fmt.Fprintf(p.writer, "%-14s %s\n", "SCHEME", "SECRET")
		fmt.Fprintf(p.writer, "%-14s %s\n", scheme, secret)
		return nil
	case OutputFormatText:
		fmt.Fprintln(p.writer, secret)
		return nil
	default:
		return fmt.Errorf("unknown output format: %s", p.format)
	}
}

// PrintError prints an error message
func (p *Printer) PrintError(err error) error {
	switch p.format {
	case OutputFormatJSON:
		return p.printJSON(map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		})
	default:
		fmt.Fprintf(p.writer, "Error: %v\n", err)
		return nil
	}
}

// printJSON prints data as JSON
func (p *Printer) printJSON(data interface{}) error {
	encoder := json.NewEncoder(p.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
