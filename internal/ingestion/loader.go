package ingestion

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const defaultTopic = "general"

// LoadIntents reads an intents JSON file.
func LoadIntents(path string) (*IntentsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading intents file %s: %w", path, err)
	}
	var file IntentsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing intents file %s: %w", path, err)
	}
	return &file, nil
}

// LoadQARows reads Q/A rows from a CSV file or from every *.csv file of a
// directory, in name order. A missing path yields no rows.
func LoadQARows(path string) ([]QARow, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.csv"))
		if err != nil {
			return nil, fmt.Errorf("listing csv files in %s: %w", path, err)
		}
		sort.Strings(files)
	}

	rows := make([]QARow, 0)
	for _, name := range files {
		fileRows, err := readCSVFile(name)
		if err != nil {
			return nil, err
		}
		rows = append(rows, fileRows...)
	}
	return rows, nil
}

// LoadQASources merges the rows of several files or directories.
func LoadQASources(paths []string) ([]QARow, error) {
	rows := make([]QARow, 0)
	for _, path := range paths {
		sourceRows, err := LoadQARows(path)
		if err != nil {
			return nil, err
		}
		rows = append(rows, sourceRows...)
	}
	return rows, nil
}

func readCSVFile(path string) ([]QARow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening csv file %s: %w", path, err)
	}
	defer f.Close()
	rows, err := ReadQARows(f)
	if err != nil {
		return nil, fmt.Errorf("reading csv file %s: %w", path, err)
	}
	return rows, nil
}

// ReadQARows parses CSV with a header row naming the question, answer,
// topic and source_url columns. Column order is free and unknown columns
// are ignored. Rows without a question or an answer are skipped.
func ReadQARows(r io.Reader) ([]QARow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimPrefix(name, "\ufeff")
		columns[strings.TrimSpace(name)] = i
	}
	field := func(record []string, name string) string {
		i, ok := columns[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]QARow, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("reading record %d: %w", line, err)
		}
		row := QARow{
			Question:  field(record, "question"),
			Answer:    field(record, "answer"),
			Topic:     field(record, "topic"),
			SourceURL: field(record, "source_url"),
		}
		if row.Topic == "" {
			row.Topic = defaultTopic
		}
		if err := ValidateQARow(&row); err != nil {
			slog.Debug("skipping csv row", "line", line, "reason", err)
			continue
		}
		rows = append(rows, row)
	}
	return rows, nil
}
