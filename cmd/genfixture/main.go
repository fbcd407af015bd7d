// Command genfixture writes a synthetic incident workbook with the same
// header labels as the published San Francisco police data, for local
// development and demos.
//
// Usage:
//
//	go run ./cmd/genfixture -out datapolice.xlsx -rows 500 -seed 7
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const sheet = "Sheet1"

var header = []string{
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

var categories = []string{
	"Assault", "Burglary", "Larceny Theft", "Malicious Mischief", "Motor Vehicle Theft",
	"Robbery", "Drug Offense", "Fraud", "Vandalism", "Warrant",
}

var intersections = []string{
	"MARKET ST \\ 5TH ST", "MISSION ST \\ 16TH ST", "POLK ST \\ GEARY BLVD",
	"TURK ST \\ TAYLOR ST", "VAN NESS AVE \\ O'FARRELL ST", "3RD ST \\ EVANS AVE",
	"GEARY BLVD \\ MASONIC AVE", "BROADWAY \\ COLUMBUS AVE", "HAIGHT ST \\ ASHBURY ST",
}

// San Francisco bounding box.
const (
	minLat, maxLat = 37.708, 37.810
	minLon, maxLon = -122.513, -122.370
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "datapolice.xlsx", "output workbook path")
	rows := flag.Int("rows", 500, "number of incident rows")
	seed := flag.Uint64("seed", 1, "random seed")
	flag.Parse()

	if *rows < 0 {
		flag.Usage()
		return fmt.Errorf("-rows must be >= 0, got %d", *rows)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeRow(f, 1, toAny(header)); err != nil {
		return err
	}

	rng := rand.New(rand.NewPCG(*seed, *seed^0x9e3779b97f4a7c15))
	start := time.Date(2018, time.January, 1, 0, 0, 0, 0, time.UTC)
	span := int64(time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC).Sub(start) / time.Minute)

	for i := range *rows {
		ts := start.Add(time.Duration(rng.Int64N(span)) * time.Minute)
		row := []any{
			ts.Format("2006/01/02 03:04:05 PM"),
			ts.Weekday().String(),
			ts.Year(),
			categories[rng.IntN(len(categories))],
			intersections[rng.IntN(len(intersections))],
			minLat + rng.Float64()*(maxLat-minLat),
			minLon + rng.Float64()*(maxLon-minLon),
			1 + rng.IntN(6),
			1 + rng.IntN(10),
			1 + rng.IntN(11),
		}
		// Roughly one row in twenty has no location or district data.
		if rng.IntN(20) == 0 {
			row[5], row[6], row[8] = nil, nil, nil
		}
		if err := writeRow(f, i+2, row); err != nil {
			return err
		}
	}

	if err := f.SaveAs(*out); err != nil {
		return fmt.Errorf("save %s: %w", *out, err)
	}
	fmt.Printf("wrote %d rows to %s\n", *rows, *out)
	return nil
}

func writeRow(f *excelize.File, n int, values []any) error {
	cell := "A" + strconv.Itoa(n)
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write row %d: %w", n, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
