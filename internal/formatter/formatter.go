package formatter

import (
	"go/format"
	"regexp"
	"strings"

	"github.com/mcncl/jsonexport/internal/errors"
)

// StyleGo selects the gofmt pass.
const StyleGo = "gofmt"

var blankRunRegex = regexp.MustCompile(`\n{3,}`)

// Formatter tidies rendered class text
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format normalizes whitespace in code and, for StyleGo, runs it through
// gofmt. When gofmt fails the normalized text is returned with the error.
func (f *Formatter) Format(code, style string) (string, error) {
	normalized := Normalize(code)
	if normalized == "" || style != StyleGo {
		return normalized, nil
	}

	formatted, err := format.Source([]byte(normalized))
	if err != nil {
		return normalized, errors.Wrap(err, "failed to parse Go code")
	}

	return string(formatted), nil
}

// Normalize strips trailing whitespace from every line, drops leading
// blank lines, collapses runs of blank lines into one and ends the text with
// a single newline.
func Normalize(code string) string {
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\r")
	}
	text := strings.Join(lines, "\n")
	text = strings.TrimLeft(text, "\n")
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	text = blankRunRegex.ReplaceAllString(text, "\n\n")
	return text + "\n"
}
