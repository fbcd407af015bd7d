package pipeline_test

import (
	"testing"

	"github.com/couchcryptid/sf-danger-zones/internal/dataset"
	"github.com/stretchr/testify/require"
)

// sheetHeader mirrors the header row of the published incident workbook.
var sheetHeader = []string{
	"Incident Datetime",
	"Incident Day of Week",
	"Incident Year",
	"Incident Category",
	"Intersection",
	"Latitude",
	"Longitude",
	"Areas of Vulnerability, 2016",
	"Current Police Districts",
	"Current Supervisor Districts",
}

type mockRow struct {
	day, year, category, intersection string
	lat, lon                          string
	areas, police, supervisors        string
}

func (r mockRow) record() []string {
	return []string{
		"2018/01/01 08:00:00 AM",
		r.day, r.year, r.category, r.intersection,
		r.lat, r.lon,
		r.areas, r.police, r.supervisors,
	}
}

func newMockTable(t *testing.T, rows ...mockRow) *dataset.Table {
	t.Helper()
	records := make([][]string, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	table, err := dataset.New(sheetHeader, records)
	require.NoError(t, err)
	return table
}

// threeRowTable holds two assaults and one larceny across two years.
func threeRowTable(t *testing.T) *dataset.Table {
	t.Helper()
	return newMockTable(t,
		mockRow{"Monday", "2018", "Assault", "MARKET ST \\ 5TH ST", "37.78", "-122.40", "1", "3", "6"},
		mockRow{"Tuesday", "2019", "Larceny Theft", "MISSION ST \\ 16TH ST", "37.76", "-122.42", "2", "4", "9"},
		mockRow{"Monday", "2019", "Assault", "POLK ST \\ GEARY BLVD", "37.79", "-122.42", "1", "3", "3"},
	)
}

// fiveRowTable holds three rows of category A and two of B.
func fiveRowTable(t *testing.T) *dataset.Table {
	t.Helper()
	return newMockTable(t,
		mockRow{"Monday", "2018", "A", "", "37.70", "-122.40", "1", "1", "1"},
		mockRow{"Monday", "2018", "A", "", "37.71", "-122.41", "1", "1", "1"},
		mockRow{"Monday", "2018", "A", "", "37.72", "-122.42", "1", "1", "1"},
		mockRow{"Monday", "2018", "B", "", "37.73", "-122.43", "5", "1", "1"},
		mockRow{"Monday", "2018", "B", "", "37.74", "-122.44", "5", "1", "1"},
	)
}
