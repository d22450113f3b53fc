package output

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Field is one line of text output.
type Field struct {
	Name  string
	Value any
}

// Fields renders as aligned "Name: value" lines with the text formatter.
type Fields []Field

// TextFormatter formats Fields as aligned lines and anything else with
// fmt's default format.
type TextFormatter struct{}

// Format formats data as text.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	fields, ok := data.(Fields)
	if !ok {
		_, err := fmt.Fprintln(w, data)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, field := range fields {
		fmt.Fprintf(tw, "%s:\t%v\n", field.Name, field.Value)
	}
	return tw.Flush()
}
