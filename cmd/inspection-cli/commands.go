// cmd/inspection-cli/commands.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"inspection-workers/internal/assembler"
	"inspection-workers/internal/common/config"
	"inspection-workers/internal/common/logger"
	"inspection-workers/internal/imaging"
	"inspection-workers/internal/pipeline"
	"inspection-workers/internal/report"
	"inspection-workers/internal/templates"
	"inspection-workers/pkg/registry"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

// app carries what the commands share. Tests replace loadConfig.
type app struct {
	configPath string
	logLevel   string
	loadConfig func(path string) (*config.Config, error)
}

func defaultApp() *app {
	return &app{loadConfig: func(path string) (*config.Config, error) {
		if path != "" {
			return config.LoadFromFile(path)
		}
		return config.Load()
	}}
}

func (a *app) logger() logger.Logger {
	return logger.NewStructured(a.logLevel, "console")
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "inspection-cli",
		Short:         "Export, import and inspect inspection reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a config YAML file (default configs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newExportCmd(a),
		newImportCmd(a),
		newPrefillCmd(),
		newMeasureCmd(),
		newTemplatesCmd(a),
	)
	return rootCmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		outDir string
	)
	cmd := &cobra.Command{
		Use:   "export RECORD_JSON",
		Short: "Render a record file to DOCX or schema JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecord(args[0])
			if err != nil {
				return err
			}
			cfg, err := a.loadConfig(a.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if outDir != "" {
				cfg.Output.Sink = config.SinkFile
				cfg.Output.Directory = outDir
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			pipe, err := pipeline.New(ctx, cfg, a.logger(), pipeline.Options{})
			if err != nil {
				return err
			}
			defer pipe.Close()

			var doc *assembler.RenderedDocument
			switch format {
			case assembler.FormatDOCX:
				doc, err = pipe.Assembler.ExportDocument(ctx, rec)
			case assembler.FormatJSON:
				doc, err = pipe.Assembler.ExportJSON(rec)
			default:
				return fmt.Errorf("unknown format %q (want docx or json)", format)
			}
			if err != nil {
				return err
			}

			location, err := pipe.Assembler.Deliver(ctx, doc)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", location, len(doc.Data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", assembler.FormatDOCX, "Output format: docx or json")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Write to this directory instead of the configured sink")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var expected string
	cmd := &cobra.Command{
		Use:   "import SCHEMA_JSON",
		Short: "Read an exported JSON document back into a record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			// import needs no templates or sink
			imp := assembler.New(nil, nil, nil, assembler.Config{}, a.logger())
			var rec report.InspectionRecord
			if expected != "" {
				want, err := report.ParseReportType(expected)
				if err != nil {
					return err
				}
				rec, err = imp.ImportDocumentAs(raw, want)
				if err != nil {
					return err
				}
			} else if rec, err = imp.ImportDocument(raw); err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVarP(&expected, "type", "t", "", "Reject documents of any other report type")
	return cmd
}

func newPrefillCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prefill TARGET_TYPE SOURCE_RECORD_JSON",
		Short: "Start a report from the record of the previous workflow step",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := report.ParseReportType(args[0])
			if err != nil {
				return err
			}
			want, ok := report.PrefillSource(target)
			if !ok {
				return fmt.Errorf("%s has no prefill source", target)
			}
			src, err := readRecord(args[1])
			if err != nil {
				return err
			}
			if src.Type != want {
				return fmt.Errorf("%s is prefilled from %s, got %s", target, want, src.Type)
			}

			dst, err := report.NewEmptyRecord(target)
			if err != nil {
				return err
			}
			report.Prefill(dst, src)
			if dst.ExpedienteNova() == "" {
				dst.SetExpedienteNova(src.ExpedienteNova())
			}
			return writeJSON(cmd.OutOrStdout(), dst)
		},
	}
}

func newMeasureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "measure IMAGE...",
		Short: "Print the pixel size read from PNG or JPEG headers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table := newTable(cmd.OutOrStdout(), "FILE", "SIZE")
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				size := imaging.Measure(data)
				if !size.Known() {
					table.Append([]string{path, "unknown"})
					continue
				}
				table.Append([]string{path, fmt.Sprintf("%dx%d", size.Width, size.Height)})
			}
			table.Render()
			return nil
		},
	}
}

func newTemplatesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the template file resolved for each report type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(a.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			var reg *registry.TemplateRegistry
			if cfg.Templates.RegistryPath != "" {
				if reg, err = registry.LoadRegistry(cfg.Templates.RegistryPath); err != nil {
					return fmt.Errorf("load registry: %w", err)
				}
			}

			files := templates.ResolveFiles(cfg.Templates, a.logger())
			types := make([]string, 0, len(files))
			for t := range files {
				types = append(types, string(t))
			}
			sort.Strings(types)

			table := newTable(cmd.OutOrStdout(), "REPORT TYPE", "FILE", "VERSION", "DESCRIPTION")
			for _, t := range types {
				version, description := "-", "-"
				if reg != nil {
					if entry, ok := reg.Lookup(t); ok {
						version, description = entry.Version, entry.Description
					}
				}
				table.Append([]string{t, files[report.ReportType(t)], version, description})
			}
			table.Render()
			return nil
		},
	}
}

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	return table
}

func readRecord(path string) (report.InspectionRecord, error) {
	var rec report.InspectionRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return rec, err
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("parse record %s: %w", path, err)
	}
	if err := rec.Validate(); err != nil {
		return rec, fmt.Errorf("record %s: %w", path, err)
	}
	return rec, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimSpace(string(out)))
	return err
}
