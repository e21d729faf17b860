package vocabulary

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportConfig defines how a corpus spreadsheet maps onto entries.
type ImportConfig struct {
	FilePath          string // Path to the Excel or CSV file
	WordColumn        string // Column with the word
	TranslationColumn string // Column with the translation
	FrequencyColumn   string // Column with the frequency rank
	LevelColumn       string // Column with the TOPIK level
	TagsColumn        string // Column with the tags
	SheetName         string // Name of the sheet to import
	StartRow          int    // The row to start importing from (1-based)
}

// DefaultImportConfig returns the default import configuration.
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		WordColumn:        "A",
		TranslationColumn: "B",
		FrequencyColumn:   "C",
		LevelColumn:       "D",
		TagsColumn:        "E",
		SheetName:         "Sheet1",
		StartRow:          2, // skip header
	}
}

// ImportResult holds the result of an import operation.
type ImportResult struct {
	TotalProcessed int
	Created        int
	Updated        int
	Skipped        int
	Errors         []string
}

// Import reads words from an Excel or CSV file into the corpus and saves the
// corpus file.
func (m *Manager) Import(config ImportConfig) (*ImportResult, error) {
	ext := strings.ToLower(filepath.Ext(config.FilePath))

	var (
		result *ImportResult
		err    error
	)
	if ext == ".csv" {
		result, err = m.importFromCSV(config)
	} else {
		result, err = m.importFromExcel(config)
	}
	if err != nil {
		return nil, err
	}

	if err := m.save(); err != nil {
		return nil, fmt.Errorf("failed to save imported vocabulary: %w", err)
	}
	m.log.Info("vocabulary import finished",
		"file", config.FilePath,
		"processed", result.TotalProcessed,
		"created", result.Created,
		"updated", result.Updated,
		"skipped", result.Skipped,
		"errors", len(result.Errors))
	return result, nil
}

func (m *Manager) importFromExcel(config ImportConfig) (*ImportResult, error) {
	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}

	result := &ImportResult{Errors: make([]string, 0)}
	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++
		if err := m.processRow(row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", i+1, err))
		}
	}
	return result, nil
}

func (m *Manager) importFromCSV(config ImportConfig) (*ImportResult, error) {
	f, err := os.Open(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	result := &ImportResult{Errors: make([]string, 0)}
	for line := 1; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}
		if line < config.StartRow {
			continue
		}
		result.TotalProcessed++
		if err := m.processRow(row, config, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
		}
	}
	return result, nil
}

func (m *Manager) processRow(row []string, config ImportConfig, result *ImportResult) error {
	word := strings.TrimSpace(cellValue(row, config.WordColumn))
	if word == "" {
		result.Skipped++
		return nil
	}

	entry := Entry{
		Translation: strings.TrimSpace(cellValue(row, config.TranslationColumn)),
		TopikLevel:  strings.TrimSpace(cellValue(row, config.LevelColumn)),
		Tags:        strings.TrimSpace(cellValue(row, config.TagsColumn)),
	}
	if raw := strings.TrimSpace(cellValue(row, config.FrequencyColumn)); raw != "" {
		rank, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid frequency rank %q", raw)
		}
		entry.FrequencyRank = rank
	}

	if _, exists := m.entries[word]; exists {
		result.Updated++
	} else {
		result.Created++
	}
	m.entries[word] = entry
	return nil
}

// cellValue resolves a column letter against a row slice.
func cellValue(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx, err := excelize.ColumnNameToNumber(column)
	if err != nil || idx < 1 || idx > len(row) {
		return ""
	}
	return row[idx-1]
}
