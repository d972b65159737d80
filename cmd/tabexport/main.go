// Command tabexport renders a JSON array of row objects into an export
// payload, subject to the plan tier's export policy.
//
//	tabexport --tier small_business --format excel --title Uploads < rows.json > uploads.xlsx
//
// A denied request prints the upgrade hint as JSON on stderr and exits 2.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bjaus/tabexport"
)

const exitDenied = 2

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

type options struct {
	tier      string
	format    string
	title     string
	columns   []string
	config    string
	in        string
	out       string
	logLevel  string
	logFormat string
}

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:           "tabexport",
		Short:         "Render rows as csv, excel, or pdf exports",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.tier, "tier", "", "plan tier of the requesting tenant")
	f.StringVar(&o.format, "format", "csv", "export format: csv, excel, pdf")
	f.StringVar(&o.title, "title", "Export", "sheet name or document title")
	f.StringSliceVar(&o.columns, "columns", nil, "explicit csv column order")
	f.StringVar(&o.config, "config", "", "path to a YAML config file")
	f.StringVar(&o.in, "in", "-", "input JSON file, - for stdin")
	f.StringVar(&o.out, "out", "-", "output file, - for stdout")
	f.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn, error")
	f.StringVar(&o.logFormat, "log-format", "text", "text or json")
	_ = cmd.MarkFlagRequired("tier")
	return cmd
}

func run(cmd *cobra.Command, o options) error {
	logger := newLogger(cmd.ErrOrStderr(), o.logLevel, o.logFormat)

	cfg, err := loadConfig(o.config)
	if err != nil {
		return err
	}

	format, err := tabexport.ParseFormat(o.format)
	if err != nil {
		return err
	}

	rows, err := readRows(cmd.InOrStdin(), o.in)
	if err != nil {
		return err
	}

	exp, err := tabexport.New(cfg, tabexport.WithLogger(logger))
	if err != nil {
		return err
	}
	res, err := exp.Export(cmd.Context(), tabexport.Request{
		Tier:    tabexport.PlanTier(o.tier),
		Format:  format,
		Rows:    rows,
		Columns: o.columns,
		Title:   o.title,
	})
	var denied *tabexport.DeniedError
	if errors.As(err, &denied) {
		hint, _ := json.Marshal(map[string]string{
			"error":        "upgrade_required",
			"format":       string(denied.Format),
			"current_tier": string(denied.Tier),
			"minimum_tier": string(denied.MinimumTier),
		})
		fmt.Fprintln(cmd.ErrOrStderr(), string(hint))
		return &exitError{code: exitDenied, err: err}
	}
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), o.out, res.Data)
}

func loadConfig(path string) (tabexport.Config, error) {
	if path == "" {
		return tabexport.DefaultConfig(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return tabexport.Config{}, err
	}
	defer f.Close()
	return tabexport.LoadConfig(f)
}

func readRows(stdin io.Reader, path string) ([]tabexport.Row, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var rows []tabexport.Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode rows: %w", err)
	}
	return rows, nil
}

func writeOutput(stdout io.Writer, path string, data []byte) error {
	if path == "-" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
