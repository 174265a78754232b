package datasource

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// csvColumns is the expected header of a historical odds file
var csvColumns = []string{"game_date", "home_team", "away_team", "book", "home_decimal", "away_decimal", "captured_at", "home_score", "away_score"}

// CSVRow is one historical odds record. Score fields are empty for
// games without results.
type CSVRow struct {
	GameDate    time.Time
	HomeTeam    string
	AwayTeam    string
	Book        string
	HomeDecimal decimal.Decimal
	AwayDecimal decimal.Decimal
	CapturedAt  time.Time
	HomeScore   *int
	AwayScore   *int
}

// ReadOddsCSV loads a historical odds file. The header must match the
// expected columns; malformed rows fail the load with their line number
// so bad exports are caught before they poison a backtest.
func ReadOddsCSV(path string) ([]CSVRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open odds file: %w", err)
	}
	defer f.Close()

	return parseOddsCSV(f)
}

func parseOddsCSV(r io.Reader) ([]CSVRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if err := validateHeader(header); err != nil {
		return nil, err
	}

	var rows []CSVRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRow(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func validateHeader(header []string) error {
	if len(header) != len(csvColumns) {
		return fmt.Errorf("expected %d columns, got %d", len(csvColumns), len(header))
	}
	for i, col := range csvColumns {
		if header[i] != col {
			return fmt.Errorf("column %d: expected %q, got %q", i, col, header[i])
		}
	}
	return nil
}

func parseRow(record []string) (CSVRow, error) {
	gameDate, err := time.Parse(time.RFC3339, record[0])
	if err != nil {
		return CSVRow{}, fmt.Errorf("bad game_date %q: %w", record[0], err)
	}
	capturedAt, err := time.Parse(time.RFC3339, record[6])
	if err != nil {
		return CSVRow{}, fmt.Errorf("bad captured_at %q: %w", record[6], err)
	}
	homeDec, err := decimal.NewFromString(record[4])
	if err != nil {
		return CSVRow{}, fmt.Errorf("bad home_decimal %q: %w", record[4], err)
	}
	awayDec, err := decimal.NewFromString(record[5])
	if err != nil {
		return CSVRow{}, fmt.Errorf("bad away_decimal %q: %w", record[5], err)
	}

	row := CSVRow{
		GameDate:    gameDate.UTC(),
		HomeTeam:    record[1],
		AwayTeam:    record[2],
		Book:        record[3],
		HomeDecimal: homeDec,
		AwayDecimal: awayDec,
		CapturedAt:  capturedAt.UTC(),
	}

	if record[7] != "" || record[8] != "" {
		homeScore, err := strconv.Atoi(record[7])
		if err != nil {
			return CSVRow{}, fmt.Errorf("bad home_score %q: %w", record[7], err)
		}
		awayScore, err := strconv.Atoi(record[8])
		if err != nil {
			return CSVRow{}, fmt.Errorf("bad away_score %q: %w", record[8], err)
		}
		row.HomeScore = &homeScore
		row.AwayScore = &awayScore
	}

	return row, nil
}
