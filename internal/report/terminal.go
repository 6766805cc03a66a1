package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/hamed0406/healthchecker/internal/domain"
)

const timestampLayout = "2006-01-02 15:04:05 UTC"

const (
	ansiReset     = "\x1b[0m"
	ansiBold      = "\x1b[1m"
	ansiUnderline = "\x1b[4m"
	ansiRed       = "\x1b[31m"
	ansiGreen     = "\x1b[32m"
	ansiYellow    = "\x1b[33m"
	ansiCyan      = "\x1b[36m"
)

// Terminal prints human-readable batches. Layout is not stable.
type Terminal struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

func NewTerminal(out io.Writer, color bool) *Terminal {
	return &Terminal{out: out, color: color}
}

// Stdout writes to standard output, coloring only when it is a terminal.
func Stdout(noColor bool) *Terminal {
	fd := os.Stdout.Fd()
	color := !noColor && (isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd))
	return NewTerminal(colorable.NewColorableStdout(), color)
}

func (t *Terminal) paint(s string, codes ...string) string {
	if !t.color || len(codes) == 0 {
		return s
	}
	return strings.Join(codes, "") + s + ansiReset
}

// Banner announces what is about to be checked.
func (t *Terminal) Banner(urls []string, interval time.Duration, once, defaultsUsed bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if defaultsUsed {
		fmt.Fprintln(t.out, t.paint("No URLs provided, using default test URLs ...", ansiYellow))
	}
	fmt.Fprintln(t.out, t.paint("HTTP Health Checker Starting...", ansiGreen, ansiBold))
	fmt.Fprintf(t.out, "Checking %d URLs every %d seconds\n", len(urls), int64(interval/time.Second))
	fmt.Fprintf(t.out, "URLs: %s\n", t.paint(strings.Join(urls, ", "), ansiCyan))
	if once {
		fmt.Fprintf(t.out, "\n%s\n", t.paint("Running single check...", ansiYellow))
	} else {
		fmt.Fprintf(t.out, "\n%s\n", t.paint("Press Ctrl+C to stop", ansiYellow))
	}
}

func (t *Terminal) Report(_ context.Context, b domain.Batch) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s\n", t.paint("Health Check Results", ansiBold, ansiUnderline))
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteByte('\n')

	for _, o := range b.Outcomes {
		statusColor := ansiRed
		if o.Up() {
			statusColor = ansiGreen
		}
		fmt.Fprintf(&sb, "%s %s [%d ms] - %s\n",
			t.paint(string(o.Status()), statusColor, ansiBold),
			t.paint(o.URL(), ansiCyan),
			o.ResponseTimeMS(),
			o.Timestamp().UTC().Format(timestampLayout),
		)
		if msg, ok := o.ErrorMessage(); ok {
			fmt.Fprintf(&sb, " Error: %s\n", t.paint(msg, ansiRed))
		}
		if code, ok := o.StatusCode(); ok {
			fmt.Fprintf(&sb, " Status Code: %d\n", code)
		}
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(t.out, sb.String())
	return err
}

// Saved confirms a successful file write.
func (t *Terminal) Saved(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.out, "Results saved to %s\n", t.paint(path, ansiGreen))
}
