package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/term"

	"github.com/dayplan/dayplan-cli/internal/tui"
)

// Format selects how responses are rendered.
type Format int

const (
	// FormatAuto renders styled tables on a TTY and JSON otherwise.
	FormatAuto Format = iota
	// FormatJSON always emits the JSON envelope.
	FormatJSON
	// FormatQuiet emits data only, no envelope or summary.
	FormatQuiet
	// FormatStyled forces styled output even when piped.
	FormatStyled
)

// Response is a renderable success payload.
type Response struct {
	Summary string // one-line human summary
	Data    any    // JSON-serializable payload
	Table   *Table // optional tabular rendering for styled output
}

// Table is a simple header/rows pair for styled rendering.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Options configures a Writer.
type Options struct {
	Format Format
	Writer io.Writer
	Theme  *tui.Theme // nil resolves the user theme
}

// Writer renders responses and errors in the configured format.
type Writer struct {
	format Format
	w      io.Writer
	styled bool
	width  int
	theme  tui.Theme
}

// New creates a Writer. FormatAuto resolves to styled output when the
// destination is a TTY and to JSON otherwise.
func New(opts Options) *Writer {
	w := opts.Writer
	if w == nil {
		w = os.Stdout
	}
	width, isTTY := terminalInfo(w)

	format := opts.Format
	if format == FormatAuto {
		if isTTY {
			format = FormatStyled
		} else {
			format = FormatJSON
		}
	}

	theme := tui.ResolveTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	return &Writer{
		format: format,
		w:      w,
		styled: format == FormatStyled,
		width:  width,
		theme:  theme,
	}
}

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, isTTY bool) {
	width = 80
	if f, ok := w.(*os.File); ok {
		if tw, _, err := term.GetSize(f.Fd()); err == nil && tw >= 40 {
			width = tw
		}
		if fi, err := f.Stat(); err == nil && (fi.Mode()&os.ModeCharDevice) != 0 {
			isTTY = true
		}
	}
	return width, isTTY
}

// Out renders a success response.
func (wr *Writer) Out(resp *Response) error {
	switch wr.format {
	case FormatQuiet:
		return wr.writeJSON(resp.Data)
	case FormatJSON:
		return wr.writeJSON(map[string]any{"ok": true, "data": resp.Data})
	default:
		return wr.renderStyled(resp)
	}
}

// Err renders an error in the configured format.
func (wr *Writer) Err(err error) error {
	e := AsError(err)
	if wr.format == FormatJSON || wr.format == FormatQuiet {
		return wr.writeJSON(map[string]any{
			"ok": false,
			"error": map[string]any{
				"code":    e.Code,
				"message": e.Message,
				"hint":    e.Hint,
			},
		})
	}

	errStyle := lipgloss.NewStyle()
	hintStyle := lipgloss.NewStyle()
	if wr.styled {
		errStyle = errStyle.Foreground(wr.theme.Error).Bold(true)
		hintStyle = hintStyle.Foreground(wr.theme.Muted).Italic(true)
	}
	fmt.Fprintln(wr.w, errStyle.Render("Error: "+e.Message))
	if e.Hint != "" {
		fmt.Fprintln(wr.w, hintStyle.Render(e.Hint))
	}
	return nil
}

func (wr *Writer) writeJSON(v any) error {
	enc := json.NewEncoder(wr.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (wr *Writer) renderStyled(resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		style := lipgloss.NewStyle()
		if wr.styled {
			style = style.Foreground(wr.theme.Primary).Bold(true)
		}
		b.WriteString(style.Render(resp.Summary))
		b.WriteString("\n")
	}

	switch {
	case resp.Table != nil:
		b.WriteString(wr.renderTable(resp.Table))
		b.WriteString("\n")
	case resp.Data != nil:
		data, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			return err
		}
		b.Write(data)
		b.WriteString("\n")
	}

	_, err := io.WriteString(wr.w, b.String())
	return err
}

func (wr *Writer) renderTable(t *Table) string {
	headerStyle := lipgloss.NewStyle()
	cellStyle := lipgloss.NewStyle()
	borderStyle := lipgloss.NewStyle()
	if wr.styled {
		headerStyle = headerStyle.Foreground(wr.theme.Foreground).Bold(true)
		cellStyle = cellStyle.Foreground(wr.theme.Foreground)
		borderStyle = borderStyle.Foreground(wr.theme.Border)
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		Width(min(wr.width, tableWidth(t))).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle.Padding(0, 1)
			}
			return cellStyle.Padding(0, 1)
		}).
		Headers(t.Headers...).
		Rows(t.Rows...)

	return tbl.Render()
}

// tableWidth estimates the natural width of a table so narrow tables are
// not stretched to the full terminal width.
func tableWidth(t *Table) int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = len(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	total := 1
	for _, w := range widths {
		total += w + 3 // padding + border
	}
	return total
}
