package diag

import (
	"strconv"
	"strings"
)

// Excerpt formats err for a terminal: the error message, then the offending
// source line prefixed by its line number, then a caret under the column.
// Errors that are not [*Error] or carry no position are returned as-is.
func Excerpt(src string, err error) string {
	if err == nil {
		return ""
	}

	e, ok := As(err)
	if !ok || !e.pos.IsValid() {
		return err.Error()
	}

	lines := strings.Split(src, "\n")
	if e.pos.Line > len(lines) {
		return err.Error()
	}

	line := strings.TrimRight(lines[e.pos.Line-1], "\r")
	num := strconv.Itoa(e.pos.Line)

	var sb strings.Builder

	sb.WriteString(e.Error())
	sb.WriteString("\n  ")
	sb.WriteString(num)
	sb.WriteString(" | ")
	sb.WriteString(line)
	sb.WriteString("\n  ")
	sb.WriteString(strings.Repeat(" ", len(num)))
	sb.WriteString(" | ")

	// Copy tabs so the caret lines up with the source under any tab width.
	col := 1
	for _, r := range line {
		if col >= e.pos.Column {
			break
		}

		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteByte(' ')
		}

		col++
	}

	sb.WriteByte('^')

	return sb.String()
}
