package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/pagination"
	"github.com/dbsmedya/pagetable/internal/render"
)

var (
	browseMetricsAddr string
	browseASCII       bool
	browseNoColor     bool
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the table interactively",
	Long: `Browse renders the table and reads navigation commands from stdin.
The table is redrawn after every fetch settles.

Commands:
  n, next          next page
  p, prev          previous page
  f, first         first page
  l, last          last page
  g N, goto N      go to page N (1-based)
  s N, size N      show N rows per page
  q, new           new query (new random result set)
  r, refresh       fetch the current page again
  stats            fetch counters and breaker state
  x, exit          quit

Example:
  pagetable browse --page-size 5 --delay 500`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringVar(&browseMetricsAddr, "metrics-addr", "",
		"Serve Prometheus metrics on this address (e.g. :9090)")
	browseCmd.Flags().BoolVar(&browseASCII, "ascii", false,
		"Draw borders with ASCII characters")
	browseCmd.Flags().BoolVar(&browseNoColor, "no-color", false,
		"Disable colours")

	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log, err := logger.New(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, cancel := SetupSignalHandler(context.Background(), func(sig os.Signal) {
		log.Warnw("Received shutdown signal", "signal", sig.String())
	})
	defer cancel()

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	if browseMetricsAddr != "" {
		srv := &http.Server{Addr: browseMetricsAddr, Handler: a.metrics.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorw("Metrics server failed", "addr", browseMetricsAddr, "error", err)
			}
		}()
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 2*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
		log.Infow("Serving metrics", "addr", browseMetricsAddr)
	}

	view := &render.Config{UseAscii: browseASCII, Color: !browseNoColor}
	return browse(ctx, a, cmd.InOrStdin(), cmd.OutOrStdout(), view)
}

// browse runs the interactive loop until exit, end of input or ctx is done.
func browse(ctx context.Context, a *app, in io.Reader, out io.Writer, view *render.Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctrl, err := a.newController("")
	if err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}

	table := render.NewTable(view)
	if err := show(ctx, ctrl, table, out, a.cfg.Table.PageSizeOptions, view); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for ctx.Err() == nil {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.Fields(line)[0] {
		case "x", "exit", "quit":
			return nil
		case "stats":
			if err := printStats(a, out); err != nil {
				return err
			}
			continue
		}

		if err := dispatch(ctrl, line); err != nil {
			fmt.Fprintf(out, "%v\n", err)
			continue
		}

		if err := show(ctx, ctrl, table, out, a.cfg.Table.PageSizeOptions, view); err != nil {
			return err
		}
	}
	return ctx.Err()
}

// dispatch turns one input line into a controller intent.
func dispatch(ctrl *pagination.Controller, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	arg := func() (int, error) {
		if len(fields) < 2 {
			return 0, fmt.Errorf("%s needs a number", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, fmt.Errorf("invalid number %q", fields[1])
		}
		return n, nil
	}

	switch fields[0] {
	case "n", "next":
		return ctrl.NextPage()
	case "p", "prev":
		return ctrl.PreviousPage()
	case "f", "first":
		return ctrl.FirstPage()
	case "l", "last":
		return ctrl.LastPage()
	case "g", "goto":
		n, err := arg()
		if err != nil {
			return err
		}
		return ctrl.GoToPage(n - 1)
	case "s", "size":
		n, err := arg()
		if err != nil {
			return err
		}
		return ctrl.SetPageSize(n)
	case "q", "new":
		return ctrl.NewQuery()
	case "r", "refresh":
		return ctrl.Refresh()
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

// show prints the loading line, waits for the fetch to settle and draws
// the table, the pagination block and the controls.
func show(ctx context.Context, ctrl *pagination.Controller, table *render.Table, out io.Writer, options []int, view *render.Config) error {
	if st := ctrl.State(); st.Status == pagination.StatusFetching {
		fmt.Fprintln(out, render.StatusLine(st))
	}

	st, err := ctrl.Wait(ctx)
	if err != nil {
		return err
	}

	if err := table.Render(out, st.Records); err != nil {
		return err
	}
	if err := render.Summary(out, st, view); err != nil {
		return err
	}
	return render.Controls(out, st, options, view)
}

func printStats(a *app, out io.Writer) error {
	counts, err := a.metrics.Counts()
	if err != nil {
		return err
	}

	outcomes := make([]string, 0, len(counts))
	for k := range counts {
		outcomes = append(outcomes, k)
	}
	sort.Strings(outcomes)

	for _, k := range outcomes {
		fmt.Fprintf(out, "%-12s %.0f\n", k, counts[k])
	}
	fmt.Fprintf(out, "%-12s %s\n", "breaker", a.breaker.State())
	if a.store != nil {
		fmt.Fprintf(out, "%-12s %d\n", "generations", a.store.Generations())
		fmt.Fprintf(out, "%-12s %d\n", "total", a.store.Total())
	}
	return nil
}
