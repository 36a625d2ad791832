package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/dayburn/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagFormat          string
	flagOutDir          string
	flagExportTimeframe string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a budget report file (csv, text, json or yaml)",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagFormat, "format", "f", string(report.FormatCSV), "csv, text, json or yaml")
	exportCmd.Flags().StringVarP(&flagOutDir, "out", "o", ".", "Directory to write the report into, or - for stdout")
	exportCmd.Flags().StringVarP(&flagExportTimeframe, "timeframe", "t", string(report.All), "week, month or all")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format, err := report.ParseFormat(flagFormat)
	if err != nil {
		return err
	}
	tf, err := report.ParseTimeframe(flagExportTimeframe)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer s.Close()

	now := time.Now()
	doc := report.Build(s.alloc.Summary(), tf, now)

	if flagOutDir == "-" {
		return report.Write(os.Stdout, format, doc)
	}

	if err := os.MkdirAll(flagOutDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(flagOutDir, report.FileName(now, format))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := report.Write(f, format, doc); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing report: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	fmt.Printf("\n  Report exported to %s\n", path)
	return nil
}
