// Command seed-data writes a sample student performance table for local runs.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/stemsi/exstem-report/internal/model"
	"github.com/xuri/excelize/v2"
)

var (
	names    = []string{"Budi Santoso", "Siti Aminah", "Andi Pratama", "Rina Wati", "Joko Susilo", "Ayu Lestari"}
	classes  = []string{"8", "9"}
	subjects = []string{"Math", "Science", "English", "History"}
	exams    = []string{"Unit Test 1", "Midterm", "Unit Test 2", "Final"}
)

func main() {
	var (
		out   string
		seed  int64
		dirty float64
	)
	flag.StringVar(&out, "out", "student_performance.csv", "Output file (.csv or .xlsx)")
	flag.Int64Var(&seed, "seed", 42, "Random seed")
	flag.Float64Var(&dirty, "dirty", 0.05, "Share of rows with missing or non-numeric marks")
	flag.Parse()

	rows := generate(rand.New(rand.NewSource(seed)), dirty)

	var err error
	if strings.EqualFold(filepath.Ext(out), ".xlsx") {
		err = writeWorkbook(out, rows)
	} else {
		err = writeCSV(out, rows)
	}
	if err != nil {
		color.Red("Seed failed: %v", err)
		os.Exit(1)
	}

	color.Green("Wrote %d rows to %s", len(rows)-1, out)
}

// generate returns a header plus one row per student, class, subject and exam.
func generate(rng *rand.Rand, dirty float64) [][]string {
	rows := [][]string{model.RequiredColumns}
	for _, name := range names {
		base := 55 + rng.Float64()*30
		for _, class := range classes {
			for _, subject := range subjects {
				for _, exam := range exams {
					marks := strconv.FormatFloat(clamp(base+rng.NormFloat64()*8), 'f', 0, 64)
					if rng.Float64() < dirty {
						marks = []string{"", "absent", "N/A"}[rng.Intn(3)]
					}
					rows = append(rows, []string{name, class, subject, exam, marks})
				}
			}
		}
	}
	return rows
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return f.Close()
}

func writeWorkbook(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return f.SaveAs(path)
}
