package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/noah-isme/intelliplan-api/internal/models"
)

// Format identifies a supported catalog file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	columnCode       = "COURSE_CODE"
	columnName       = "COURSE_NAME"
	columnFaculty    = "FACULTY_NAME"
	columnSlotNumber = "SLOT_NUMBER"
	columnTimings    = "TIMINGS"
	columnCredits    = "CREDITS"
)

// RequiredColumns lists the header names every catalog file must carry.
var RequiredColumns = []string{columnCode, columnName, columnFaculty, columnSlotNumber, columnTimings, columnCredits}

var (
	// ErrMissingColumns is returned when the header lacks a required column.
	ErrMissingColumns = errors.New("catalog: missing required columns")
	// ErrUnsupportedFormat is returned for files that are neither CSV nor XLSX.
	ErrUnsupportedFormat = errors.New("catalog: unsupported file format")
	// ErrNoHeader is returned for files without a header row.
	ErrNoHeader = errors.New("catalog: file has no header row")
)

// FormatFromFilename infers the catalog format from a file extension.
func FormatFromFilename(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// Loader turns tabular enrollment data into a Catalog.
type Loader struct {
	logger *zap.Logger
}

// NewLoader constructs a Loader.
func NewLoader(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadFile reads a catalog from disk, choosing the reader by extension.
func (l *Loader) LoadFile(path string) (models.Catalog, error) {
	format, err := FormatFromFilename(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()
	return l.Load(file, format)
}

// Load reads a catalog in the given format.
func (l *Loader) Load(r io.Reader, format Format) (models.Catalog, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatCSV:
		records, err = readCSV(r)
	case FormatXLSX:
		records, err = readXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	return l.build(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet: %w", err)
	}
	return rows, nil
}

// build validates the header, cleans rows and groups slots by course code in row order.
func (l *Loader) build(records [][]string) (models.Catalog, error) {
	if len(records) == 0 {
		return nil, ErrNoHeader
	}
	index := headerIndex(records[0])
	var missing []string
	for _, column := range RequiredColumns {
		if _, ok := index[column]; !ok {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	catalog := make(models.Catalog)
	seen := make(map[string]bool)
	duplicates, dropped := 0, 0
	for i, record := range records[1:] {
		row := make(map[string]string, len(index))
		for column, idx := range index {
			if idx < len(record) {
				row[column] = strings.TrimSpace(record[idx])
			}
		}

		fingerprint := rowFingerprint(row)
		if seen[fingerprint] {
			duplicates++
			continue
		}
		seen[fingerprint] = true

		if row[columnCode] == "" || row[columnSlotNumber] == "" || row[columnTimings] == "" {
			dropped++
			continue
		}

		blocks, rejected := ParseTimings(row[columnTimings])
		if len(rejected) > 0 || len(blocks) == 0 {
			l.logger.Warn("unparseable timings",
				zap.Int("row", i+2),
				zap.String("course_code", row[columnCode]),
				zap.String("timings", row[columnTimings]),
				zap.Strings("rejected", rejected),
			)
		}

		code := row[columnCode]
		catalog[code] = append(catalog[code], models.Slot{
			CourseCode:  code,
			CourseName:  row[columnName],
			FacultyName: row[columnFaculty],
			SlotNumber:  row[columnSlotNumber],
			Credits:     parseCredits(row[columnCredits]),
			TimeBlocks:  blocks,
		})
	}

	l.logger.Info("catalog parsed",
		zap.Int("courses", len(catalog)),
		zap.Int("slots", catalog.SlotCount()),
		zap.Int("duplicates_removed", duplicates),
		zap.Int("rows_dropped", dropped),
	)
	return catalog, nil
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, exists := index[key]; !exists {
			index[key] = i
		}
	}
	return index
}

func rowFingerprint(row map[string]string) string {
	parts := make([]string, 0, len(RequiredColumns))
	for _, column := range RequiredColumns {
		parts = append(parts, row[column])
	}
	return strings.Join(parts, "\x1f")
}

// parseCredits accepts integers or decimals; anything invalid or negative becomes 0.
func parseCredits(raw string) int {
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return max(n, 0)
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int(f)
}
