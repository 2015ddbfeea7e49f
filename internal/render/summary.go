package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gookit/color"

	"github.com/dbsmedya/pagetable/internal/pagination"
)

// paginationBlock is the pagination state as shown under the table.
type paginationBlock struct {
	PageIndex       int  `json:"pageIndex"`
	PageSize        int  `json:"pageSize"`
	PageCount       int  `json:"pageCount"`
	CanNextPage     bool `json:"canNextPage"`
	CanPreviousPage bool `json:"canPreviousPage"`
}

// StatusLine describes the current fetch: loading, failed, or how many
// results are shown out of the approximate total.
func StatusLine(st pagination.State) string {
	switch st.Status {
	case pagination.StatusFetching:
		return "Loading..."
	case pagination.StatusFailed:
		return fmt.Sprintf("Error: %v", st.Err)
	default:
		return fmt.Sprintf("Showing %d of ~%d results", len(st.Records), st.PageCount*st.PageSize)
	}
}

// PageLine returns "Page X of Y". An empty result set reads "Page 1 of 0".
func PageLine(st pagination.State) string {
	return fmt.Sprintf("Page %d of %d", st.Page(), st.PageCount)
}

// Summary writes the status line, the pagination state block and the page line.
func Summary(w io.Writer, st pagination.State, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	block, err := json.MarshalIndent(paginationBlock{
		PageIndex:       st.PageIndex,
		PageSize:        st.PageSize,
		PageCount:       st.PageCount,
		CanNextPage:     st.CanNext,
		CanPreviousPage: st.CanPrevious,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode pagination state: %w", err)
	}

	status := StatusLine(st)
	if cfg.Color && st.Status == pagination.StatusFailed {
		status = color.Red.Sprint(status)
	}

	var sb strings.Builder
	sb.WriteString(status)
	sb.WriteString("\n")
	sb.Write(block)
	sb.WriteString("\n")
	sb.WriteString(PageLine(st))
	sb.WriteString("\n")

	_, err = io.WriteString(w, sb.String())
	return err
}

// Controls writes the navigation controls with unavailable moves dimmed.
func Controls(w io.Writer, st pagination.State, options []int, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	button := func(label string, enabled bool) string {
		if !enabled {
			if cfg.Color {
				return color.Gray.Sprint(label)
			}
			return strings.Repeat(" ", len(label))
		}
		return label
	}

	sizes := make([]string, len(options))
	for i, n := range options {
		if n == st.PageSize {
			sizes[i] = fmt.Sprintf("[%d]", n)
		} else {
			sizes[i] = fmt.Sprintf("%d", n)
		}
	}

	_, err := fmt.Fprintf(w, "%s %s %s %s  | Show: %s\n",
		button("<<", st.CanPrevious),
		button("<", st.CanPrevious),
		button(">", st.CanNext),
		button(">>", st.CanNext),
		strings.Join(sizes, " "),
	)
	return err
}
