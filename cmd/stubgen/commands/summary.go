package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"

	"github.com/teranos/stubgen/stubgen"
)

// printSummary renders a run report as a table followed by per-file errors.
func printSummary(w io.Writer, report *stubgen.Report) error {
	if report == nil {
		return nil
	}

	revision := report.Revision
	if revision == "" {
		revision = "-"
	}
	data := pterm.TableData{
		{"Files", "Failed", "Classes", "Modules", "Revision", "Time"},
		{
			strconv.Itoa(report.Files),
			strconv.Itoa(report.Failed),
			strconv.Itoa(report.Classes),
			strconv.Itoa(len(report.Modules)),
			revision,
			report.Duration.Round(time.Millisecond).String(),
		},
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render(); err != nil {
		return err
	}

	for _, fe := range report.Errors {
		pterm.Error.WithWriter(w).Println(fe.Error())
	}
	return nil
}

// printStale lists stub files that differ from a fresh generation.
func printStale(w io.Writer, stale []string) {
	if len(stale) == 0 {
		pterm.Success.WithWriter(w).Println("Stubs are up to date")
		return
	}
	pterm.Warning.WithWriter(w).Printfln("%d stub files are out of date:", len(stale))
	for _, path := range stale {
		fmt.Fprintf(w, "  %s\n", path)
	}
}
