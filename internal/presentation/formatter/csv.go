package formatter

import (
	"encoding/csv"
	"io"
)

type CSVFormatter struct{}

func NewCSVFormatter() *CSVFormatter {
	return &CSVFormatter{}
}

func (f *CSVFormatter) Format(w io.Writer, rows []SessionRow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"date", "session_id", "digest", "path"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write([]string{row.Date, row.SessionID, row.Digest, row.Path}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
