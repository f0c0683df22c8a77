package evaluator

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"text/tabwriter"
)

var csvHeader = []string{"method", "total", "correct", "accuracy", "fallback_rate"}

// WriteCSV writes results with rates formatted to six decimals.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range results {
		record := []string{
			r.Method.String(),
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Correct),
			strconv.FormatFloat(r.Accuracy(), 'f', 6, 64),
			strconv.FormatFloat(r.FallbackRate(), 'f', 6, 64),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV writes results to path, creating parent directories.
func SaveCSV(path string, results []Result) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(f, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WriteTable prints results as an aligned text table with rates in percent.
func WriteTable(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tTOTAL\tCORRECT\tFALLBACKS\tACCURACY\tFALLBACK RATE")
	for _, r := range results {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%.2f%%\t%.2f%%\n",
			r.Method, r.Total, r.Correct, r.Fallbacks, r.Accuracy()*100, r.FallbackRate()*100)
	}
	return tw.Flush()
}
