// Package output renders command results as styled terminal text, plain
// Markdown, or JSON. Commands obtain a Renderer from the CLI context and
// never write ANSI sequences themselves; the Renderer decides based on the
// requested mode and whether stdout is a terminal.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Mode selects how results are rendered.
type Mode string

// Rendering modes. ModeAuto resolves to ModeText on a terminal and
// ModeMarkdown when output is piped.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// ValidModes lists the accepted --format values.
var ValidModes = []Mode{ModeAuto, ModeText, ModeMarkdown, ModeJSON}

// ParseMode validates a mode string, defaulting empty to ModeAuto.
func ParseMode(s string) (Mode, error) {
	if s == "" {
		return ModeAuto, nil
	}
	m := Mode(s)
	for _, v := range ValidModes {
		if m == v {
			return m, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q (valid: auto, text, markdown, json)", s)
}

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	width  int
	styles *Styles
}

// NewRenderer creates a renderer over the given writers. Nil writers default
// to os.Stdout and os.Stderr. Color support is probed from the out writer:
// buffers and pipes get plain text, terminals get the profile termenv
// detects from the environment.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	if errOut == nil {
		errOut = os.Stderr
	}
	if mode == "" {
		mode = ModeAuto
	}

	isTTY := false
	width := 0
	if f, ok := out.(*os.File); ok {
		fd := int(f.Fd())
		isTTY = term.IsTerminal(fd)
		if isTTY {
			if w, _, err := term.GetSize(fd); err == nil {
				width = w
			}
		}
	}

	lr := lipgloss.NewRenderer(out, termenv.WithColorCache(true))
	if !isTTY {
		lr.SetColorProfile(termenv.Ascii)
	}

	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		width:  width,
		styles: newStyles(lr),
	}
}

// EffectiveMode resolves ModeAuto against the detected terminal.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Styles returns the style set matched to the output's color support.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the underlying output writer, for table renderers and
// other components that write directly.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Width returns the terminal width, or 0 when unknown.
func (r *Renderer) Width() int {
	return r.width
}

// Println writes a line to the output writer.
func (r *Renderer) Println(a ...any) {
	fmt.Fprintln(r.out, a...)
}

// Printf writes formatted text to the output writer.
func (r *Renderer) Printf(format string, a ...any) {
	fmt.Fprintf(r.out, format, a...)
}

// Header writes a section header followed by a blank line. In Markdown mode
// it emits an ATX heading; in text mode a styled line.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		fmt.Fprintln(r.out, FormatHeader(level, text))
	} else {
		style := r.styles.Header2
		if level <= 1 {
			style = r.styles.Header1
		}
		fmt.Fprintln(r.out, style.Render(text))
	}
	fmt.Fprintln(r.out)
}

// Success writes a success line to stdout.
func (r *Renderer) Success(msg string) {
	fmt.Fprintln(r.out, r.styles.Success.Render("✓")+" "+msg)
}

// Error writes an error line to stderr.
func (r *Renderer) Error(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Error.Render("✗")+" "+msg)
}

// Warning writes a warning line to stderr. Warnings are diagnostics, not
// results, so they stay out of pipelines and JSON output.
func (r *Renderer) Warning(msg string) {
	fmt.Fprintln(r.errOut, r.styles.Warning.Render("!")+" "+msg)
}

// Muted writes a de-emphasized line to stdout.
func (r *Renderer) Muted(msg string) {
	fmt.Fprintln(r.out, r.styles.Muted.Render(msg))
}

// StatusLine writes an indented item line with a status glyph:
//
//	✓ docs/index.md (created)
//
// Recognized statuses are "success", "failed", "warning", and "skipped";
// anything else gets a neutral bullet. Empty detail omits the parenthetical.
func (r *Renderer) StatusLine(name, status, detail string) {
	var glyph string
	switch status {
	case "success":
		glyph = r.styles.StatusSuccess.Render("✓")
	case "failed", "error":
		glyph = r.styles.StatusFailed.Render("✗")
	case "warning":
		glyph = r.styles.Warning.Render("!")
	case "skipped":
		glyph = r.styles.Muted.Render("-")
	default:
		glyph = r.styles.Muted.Render("•")
	}
	if detail != "" {
		fmt.Fprintf(r.out, "  %s %s %s\n", glyph, name, r.styles.Muted.Render("("+detail+")"))
		return
	}
	fmt.Fprintf(r.out, "  %s %s\n", glyph, name)
}

// JSON writes v as indented JSON to stdout. Used by every command's
// --format json path so the shape stays consistent.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}
	return nil
}
