// Package parser reads CSV edge lists into raw edge rows.
package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gilchrisn/network-analysis-service/pkg/network"
)

var (
	// ErrEmptyInput is returned when the input has no header row.
	ErrEmptyInput = errors.New("parser: empty input")
	// ErrMalformedCSV is returned when the input is not valid CSV.
	ErrMalformedCSV = errors.New("parser: malformed CSV")
)

// naValues are the cell values treated as missing, matching the defaults of
// common dataframe readers.
var naValues = map[string]bool{
	"":         true,
	"#N/A":     true,
	"#N/A N/A": true,
	"#NA":      true,
	"-1.#IND":  true,
	"-1.#QNAN": true,
	"-NaN":     true,
	"-nan":     true,
	"1.#IND":   true,
	"1.#QNAN":  true,
	"<NA>":     true,
	"N/A":      true,
	"NA":       true,
	"NULL":     true,
	"NaN":      true,
	"None":     true,
	"n/a":      true,
	"nan":      true,
	"null":     true,
}

// ParseEdgeListFile opens path and parses it as a CSV edge list.
func ParseEdgeListFile(path string) ([]network.RawEdge, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open edge list: %w", err)
	}
	defer file.Close()

	return ParseEdgeList(file)
}

// ParseEdgeList parses a CSV edge list. The first record is a header and is
// ignored; every following record contributes its first two columns as a
// (source, target) row. Extra columns are ignored and short rows yield a
// missing target.
func ParseEdgeList(r io.Reader) ([]network.RawEdge, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyInput
		}
		return nil, wrapReadError(err)
	}

	var rows []network.RawEdge
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, wrapReadError(err)
		}

		rows = append(rows, network.RawEdge{
			Source: cell(record, 0),
			Target: cell(record, 1),
		})
	}

	return rows, nil
}

func cell(record []string, i int) network.NodeRef {
	if i >= len(record) {
		return network.Missing()
	}
	v := strings.TrimSpace(record[i])
	if naValues[v] {
		return network.Missing()
	}
	return network.Ref(v)
}

func wrapReadError(err error) error {
	var perr *csv.ParseError
	if errors.As(err, &perr) {
		return fmt.Errorf("%w: %v", ErrMalformedCSV, perr)
	}
	return fmt.Errorf("failed to read edge list: %w", err)
}
