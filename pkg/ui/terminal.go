package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// ASCIILogo is printed at the start of a run
const ASCIILogo = `
    ╔════════════════════════════════════════════════════╗
    ║  ███████╗██████╗ ███████╗                          ║
    ║  ██╔════╝██╔══██╗██╔════╝   literature library     ║
    ║  ███████╗██║  ██║███████╗   safety data sheet      ║
    ║  ╚════██║██║  ██║╚════██║   bulk downloader        ║
    ║  ███████║██████╔╝███████║                          ║
    ║  ╚══════╝╚═════╝ ╚══════╝                          ║
    ╚════════════════════════════════════════════════════╝
`

const (
	codeCyan    = "36"
	codeYellow  = "33"
	codeRed     = "31"
	codeGreen   = "32"
	codeMagenta = "35"
	codeDim     = "2"
)

// Console writes human-facing output, coloured only when allowed
type Console struct {
	out   io.Writer
	color bool
}

// NewConsole creates a Console writing to out. Colour is used when noColor
// is false and out is a terminal.
func NewConsole(out io.Writer, noColor bool) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out, color: ColorEnabled(out, noColor)}
}

// ColorEnabled reports whether ANSI colour should be written to w
func ColorEnabled(w io.Writer, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(w)
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Writer returns the underlying writer
func (c *Console) Writer() io.Writer {
	return c.out
}

// Interactive reports whether the console is a terminal
func (c *Console) Interactive() bool {
	return IsTerminal(c.out)
}

// ClearLine erases the current line, such as a progress line drawn with \r
func (c *Console) ClearLine() {
	fmt.Fprint(c.out, "\r\033[K")
}

func (c *Console) paint(code, text string) string {
	if !c.color {
		return text
	}
	return "\033[" + code + "m" + text + "\033[0m"
}

func (c *Console) Cyan(text string) string    { return c.paint(codeCyan, text) }
func (c *Console) Yellow(text string) string  { return c.paint(codeYellow, text) }
func (c *Console) Red(text string) string     { return c.paint(codeRed, text) }
func (c *Console) Green(text string) string   { return c.paint(codeGreen, text) }
func (c *Console) Magenta(text string) string { return c.paint(codeMagenta, text) }
func (c *Console) Dim(text string) string     { return c.paint(codeDim, text) }

// PrintLogo prints the ASCII logo
func (c *Console) PrintLogo() {
	fmt.Fprint(c.out, c.Cyan(ASCIILogo))
}

// PrintError prints an error message in red
func (c *Console) PrintError(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(c.out, c.Red(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(c.out, c.Red(msg))
	}
}

// PrintSuccess prints a success message in green
func (c *Console) PrintSuccess(msg string) {
	fmt.Fprintln(c.out, c.Green(msg))
}

// PrintInfo prints a label/value pair
func (c *Console) PrintInfo(label string, value string) {
	fmt.Fprintf(c.out, "%s: %s\n", c.Cyan(label), c.Yellow(value))
}

// PrintWarning prints a warning message in yellow
func (c *Console) PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		fmt.Fprintln(c.out, c.Yellow(msg+": "+fmt.Sprintf("%v", args[0])))
	} else {
		fmt.Fprintln(c.out, c.Yellow(msg))
	}
}

// PrintHighlight prints a highlighted message in magenta
func (c *Console) PrintHighlight(msg string) {
	fmt.Fprintln(c.out, c.Magenta(msg))
}
