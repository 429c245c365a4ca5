package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"jelajah/internal/domain"
	"jelajah/internal/models"
)

// ParseClustersCSV reads the board's bulk-import sheet. Expected
// columns: name,category,district,latitude,longitude,description.
// A header row is detected and skipped. Any bad row fails the whole
// import with a row-numbered validation error; partial imports would
// leave the catalog in a half-loaded state nobody can reason about.
func ParseClustersCSV(r io.Reader) ([]models.Cluster, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv parse: %v: %w", err, domain.ErrValidation)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv is empty: %w", domain.ErrValidation)
	}

	start := 0
	if strings.EqualFold(strings.TrimSpace(records[0][0]), "name") {
		start = 1
	}

	var out []models.Cluster
	for i := start; i < len(records); i++ {
		row := records[i]
		line := i + 1
		if len(row) < 5 {
			return nil, fmt.Errorf("row %d: expected at least 5 columns, got %d: %w", line, len(row), domain.ErrValidation)
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			return nil, fmt.Errorf("row %d: name is required: %w", line, domain.ErrValidation)
		}
		category := strings.ToUpper(strings.TrimSpace(row[1]))
		if category == "" {
			return nil, fmt.Errorf("row %d: category is required: %w", line, domain.ErrValidation)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad latitude %q: %w", line, row[3], domain.ErrValidation)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: bad longitude %q: %w", line, row[4], domain.ErrValidation)
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return nil, fmt.Errorf("row %d: coordinates out of range: %w", line, domain.ErrValidation)
		}
		description := ""
		if len(row) > 5 {
			description = strings.TrimSpace(row[5])
		}
		out = append(out, models.Cluster{
			Name:        name,
			Category:    category,
			District:    strings.TrimSpace(row[2]),
			Latitude:    lat,
			Longitude:   lng,
			Description: description,
		})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("csv has no data rows: %w", domain.ErrValidation)
	}
	return out, nil
}
