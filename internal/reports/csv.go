package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteCSV renders the rows as CSV with a header line
func WriteCSV(w io.Writer, rows []SessionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	record := make([]string, len(Columns))
	for _, row := range rows {
		for i, val := range row.values() {
			switch v := val.(type) {
			case string:
				record[i] = v
			case int:
				record[i] = strconv.Itoa(v)
			case bool:
				record[i] = strconv.FormatBool(v)
			default:
				record[i] = fmt.Sprint(v)
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
