// Copyright 2025 Agentic World, LLC (Sherin Thomas)
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/agentberlin/streaksnake/internal/app"
	"github.com/agentberlin/streaksnake/internal/types"
	"github.com/kennygrant/sanitize"
	"github.com/spf13/cobra"
)

// Exporter writes a run's records to a file
type Exporter struct {
	outputDir string
	format    string
	now       func() time.Time
}

func validateFormat(format string) error {
	switch format {
	case "json", "csv", "tsv":
		return nil
	}
	return fmt.Errorf("invalid format: %s (must be json, csv or tsv)", format)
}

// fileName derives a filesystem-safe name from the run's domain
func (e *Exporter) fileName(info types.RunInfo) string {
	base := sanitize.BaseName(info.Domain)
	if base == "" {
		base = "run"
	}
	return fmt.Sprintf("%s_run%d.%s", base, info.ID, e.format)
}

// Export writes result into the output directory and returns the file path
func (e *Exporter) Export(result *types.RunResultDetailed) (string, error) {
	if err := validateFormat(e.format); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %v", err)
	}

	filePath := filepath.Join(e.outputDir, e.fileName(result.RunInfo))
	f, err := os.Create(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	switch e.format {
	case "json":
		err = e.writeJSON(f, result)
	case "tsv":
		err = writeDelimited(f, '\t', result.Records)
	default:
		err = writeDelimited(f, ',', result.Records)
	}
	if err != nil {
		return "", err
	}
	return filePath, nil
}

func (e *Exporter) writeJSON(f *os.File, result *types.RunResultDetailed) error {
	now := time.Now
	if e.now != nil {
		now = e.now
	}
	output := struct {
		RunID        uint                   `json:"runId"`
		Domain       string                 `json:"domain"`
		Target       string                 `json:"target"`
		State        string                 `json:"state"`
		LimitReached bool                   `json:"limitReached"`
		ExportedAt   string                 `json:"exportedAt"`
		Total        int                    `json:"total"`
		Records      []types.RecordInfo     `json:"records"`
		Diagnostics  []types.DiagnosticInfo `json:"diagnostics"`
	}{
		RunID:        result.RunInfo.ID,
		Domain:       result.RunInfo.Domain,
		Target:       result.RunInfo.Target,
		State:        result.RunInfo.State,
		LimitReached: result.RunInfo.LimitReached,
		ExportedAt:   now().Format(time.RFC3339),
		Total:        len(result.Records),
		Records:      result.Records,
		Diagnostics:  result.Diagnostics,
	}

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

var recordHeader = []string{
	"Position",
	"Name",
	"Profile URL",
	"Streak Days",
	"Twitter",
	"LinkedIn",
	"Facebook",
	"Website",
	"Other Links",
	"Resolved",
}

func writeDelimited(f *os.File, comma rune, records []types.RecordInfo) error {
	w := csv.NewWriter(f)
	w.Comma = comma

	if err := w.Write(recordHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Position + 1),
			r.Name,
			r.ProfileURL,
			strconv.Itoa(r.StreakDays),
			r.Twitter,
			r.LinkedIn,
			r.Facebook,
			r.Website,
			strings.Join(r.OtherLinks, " "),
			strconv.FormatBool(r.Resolved),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

var (
	exportRunID  uint
	exportOutput string
	exportFormat string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored run to JSON, CSV or TSV",
	Example: `  # Export run 12 as CSV
  streaksnake export --run-id 12 -f csv -o ./export`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if exportRunID == 0 {
			return fmt.Errorf("--run-id is required")
		}
		if err := validateFormat(exportFormat); err != nil {
			return err
		}

		env, err := openEnvironment(&app.NoOpEmitter{}, nil)
		if err != nil {
			return err
		}
		defer env.Close()

		result, err := env.app.GetRunResult(exportRunID, "")
		if err != nil {
			return fmt.Errorf("run not found: %v", err)
		}

		exporter := &Exporter{outputDir: exportOutput, format: exportFormat}
		path, err := exporter.Export(result)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported run %d to %s\n", exportRunID, path)
		return nil
	},
}

func init() {
	f := exportCmd.Flags()
	f.UintVarP(&exportRunID, "run-id", "r", 0, "Run ID to export (required)")
	f.StringVarP(&exportOutput, "output", "o", ".", "Output directory")
	f.StringVarP(&exportFormat, "format", "f", "json", "Output format: json, csv, tsv")
}
