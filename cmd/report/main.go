// Command report prints the student performance dashboard as terminal tables.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/stemsi/exstem-report/internal/chart"
	"github.com/stemsi/exstem-report/internal/config"
	"github.com/stemsi/exstem-report/internal/dataset"
	"github.com/stemsi/exstem-report/internal/logger"
	"github.com/stemsi/exstem-report/internal/model"
	"github.com/stemsi/exstem-report/internal/report"
	"github.com/stemsi/exstem-report/internal/service"
)

func main() {
	cfg := config.Load()

	var (
		dataPath    string
		student     string
		class       string
		subject     string
		listOptions bool
	)
	flag.StringVar(&dataPath, "data", cfg.DataPath, "Path to the student performance table (.csv, .tsv, .xlsx)")
	flag.StringVar(&student, "student", "", "Student name (default: first student)")
	flag.StringVar(&class, "class", "", "Class (default: first class)")
	flag.StringVar(&subject, "subject", model.AllSubjects, "Subject, or \""+model.AllSubjects+"\"")
	flag.BoolVar(&listOptions, "options", false, "List the available students, classes and subjects")
	flag.Parse()

	log := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	datasets := dataset.NewFileCache(dataset.LoadOptions{Delimiter: cfg.DataDelimiter}, log)
	reportService := service.NewReportService(datasets, dataPath, nil, log)

	ctx := context.Background()
	opts, err := reportService.Options(ctx)
	if err != nil {
		color.Red("Could not load %s: %v", dataPath, err)
		os.Exit(1)
	}

	if listOptions {
		printOptions(os.Stdout, opts)
		return
	}

	sel := report.DefaultSelection(opts)
	if student != "" {
		sel.Student = student
	}
	if class != "" {
		sel.Class = class
	}
	sel.Subject = subject

	dash, err := reportService.Dashboard(ctx, sel)
	if err != nil {
		color.Red("Could not build report: %v", err)
		os.Exit(1)
	}
	printDashboard(os.Stdout, dash)
}

func printOptions(w io.Writer, opts model.Options) {
	heading := color.New(color.FgCyan, color.Bold)
	heading.Fprintln(w, "\n=== Selection Options ===")

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Control", "Choices"})
	table.SetAutoWrapText(false)
	table.Append([]string{"Student", strings.Join(opts.Students, ", ")})
	table.Append([]string{"Class", strings.Join(opts.Classes, ", ")})
	table.Append([]string{"Subject", strings.Join(opts.Subjects, ", ")})
	table.Render()
}

func printDashboard(w io.Writer, dash *service.Dashboard) {
	color.New(color.FgCyan, color.Bold).Fprintln(w, "\n=== Student Performance Dashboard ===")
	fmt.Fprintf(w, "Student: %s | Class: %s | Subject: %s\n",
		dash.Selection.Student, dash.Selection.Class, dash.Selection.Subject)

	for _, panel := range dash.Panels {
		color.New(color.FgYellow).Fprintf(w, "\n%s\n", panel.Header)
		if !panel.HasChart() {
			color.New(color.FgBlue).Fprintln(w, panel.Notice)
			continue
		}
		printSpec(w, panel.Spec)
	}
}

func printSpec(w io.Writer, spec *chart.Spec) {
	fmt.Fprintln(w, spec.Title)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{spec.XField, "Average " + spec.YField})
	for _, p := range spec.Data {
		table.Append([]string{p.Label, fmt.Sprintf("%.2f", p.Value)})
	}
	table.Render()
}
