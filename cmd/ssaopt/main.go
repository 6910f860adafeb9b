package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/mengluoML/julia"
	"github.com/mengluoML/julia/ir"
	"github.com/mengluoML/julia/irtext"
	"github.com/mengluoML/julia/mem2reg"
)

func main() {
	var (
		inFile      = flag.String("in", "", "Path to textual IR file (default: stdin)")
		outFile     = flag.String("o", "", "Write optimized IR to file (default: stdout)")
		funcName    = flag.String("func", "", "Promote only the named function")
		showStats   = flag.Bool("stats", false, "Print promotion statistics")
		noPrint     = flag.Bool("q", false, "Do not print the optimized IR")
		verbose     = flag.Bool("v", false, "Enable debug logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *interactive {
		if *inFile == "" {
			fmt.Fprintln(os.Stderr, "Usage: ssaopt -i -in <file.ir>")
			os.Exit(1)
		}
		if err := runInteractive(*inFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*inFile, *outFile, *funcName, *showStats, *noPrint, *verbose); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(inFile, outFile, funcName string, showStats, noPrint, verbose bool) error {
	var (
		data []byte
		err  error
	)
	if inFile == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(inFile)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var opts []mem2reg.Option
	if verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		defer logger.Sync()
		opts = append(opts, mem2reg.WithLogger(logger))
	}

	m, err := irtext.Parse(string(data))
	if err != nil {
		return err
	}

	var stats mem2reg.Stats
	if funcName != "" {
		f := m.Func(funcName)
		if f == nil {
			return fmt.Errorf("no function %q in input", funcName)
		}
		stats, err = julia.Promote(f, opts...)
	} else {
		stats, err = julia.PromoteModule(m, opts...)
	}
	if err != nil {
		return err
	}

	if !noPrint {
		text := irtext.Print(m)
		if outFile == "" {
			fmt.Print(text)
		} else if err := os.WriteFile(outFile, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	if showStats {
		printStats(os.Stderr, m, stats)
	}
	return nil
}

var (
	statLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB")).
			Width(18)

	statValueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	statHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)
)

func printStats(w *os.File, m *ir.Module, stats mem2reg.Stats) {
	colored := term.IsTerminal(int(w.Fd()))
	label := func(s string) string {
		if colored {
			return statLabelStyle.Render(s)
		}
		return fmt.Sprintf("%-18s", s)
	}
	value := func(n int) string {
		if colored {
			return statValueStyle.Render(strconv.Itoa(n))
		}
		return strconv.Itoa(n)
	}

	header := fmt.Sprintf("Promotion: %d functions", len(m.Funcs))
	if colored {
		header = statHeaderStyle.Render(header)
	}
	fmt.Fprintln(w, header)

	rows := []struct {
		label string
		n     int
	}{
		{"promoted slots", stats.Promoted()},
		{"  single store", stats.SingleStore},
		{"  single block", stats.SingleBlock},
		{"  general", stats.General},
		{"phis placed", stats.PhisPlaced},
		{"copies split", stats.CopiesSplit},
		{"dead slots", stats.DeadSlots},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", label(r.label), value(r.n))
	}
}
