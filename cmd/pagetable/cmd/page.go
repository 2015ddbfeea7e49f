package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/pagetable/internal/logger"
	"github.com/dbsmedya/pagetable/internal/pagination"
	"github.com/dbsmedya/pagetable/internal/render"
)

var (
	pageNumber int
	pageQuery  string
	pageASCII  bool
)

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Fetch and print a single page",
	Long: `Page fetches one page of a result set and prints it with the
pagination block. Pages are numbered from 1.

Passing --query pins the query token. With a fixed source seed in the
configuration the same query always yields the same result set.

Example:
  pagetable page --page 2 --page-size 5 --query demo`,
	RunE: runPage,
}

func init() {
	pageCmd.Flags().IntVarP(&pageNumber, "page", "p", 1,
		"Page number to print (1-based)")
	pageCmd.Flags().StringVarP(&pageQuery, "query", "q", "",
		"Query token (random if empty)")
	pageCmd.Flags().BoolVar(&pageASCII, "ascii", true,
		"Draw borders with ASCII characters")

	rootCmd.AddCommand(pageCmd)
}

func runPage(cmd *cobra.Command, args []string) error {
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

	return printPage(ctx, a, cmd.OutOrStdout(), pageNumber, pageQuery, &render.Config{UseAscii: pageASCII})
}

// printPage renders page (1-based) of the result set for query.
func printPage(ctx context.Context, a *app, out io.Writer, page int, query string, view *render.Config) error {
	ctrl, err := a.newController(query)
	if err != nil {
		return err
	}
	defer func() { _ = ctrl.Close() }()

	if err := ctrl.Start(ctx); err != nil {
		return err
	}
	st, err := ctrl.Wait(ctx)
	if err != nil {
		return err
	}
	if st.Status == pagination.StatusFailed {
		return st.Err
	}

	if page != 1 {
		if err := ctrl.GoToPage(page - 1); err != nil {
			if errors.Is(err, pagination.ErrPageOutOfRange) {
				return fmt.Errorf("page %d out of range (1-%d)", page, max(st.PageCount, 1))
			}
			return err
		}
		if st, err = ctrl.Wait(ctx); err != nil {
			return err
		}
		if st.Status == pagination.StatusFailed {
			return st.Err
		}
	}

	if err := render.NewTable(view).Render(out, st.Records); err != nil {
		return err
	}
	return render.Summary(out, st, view)
}
