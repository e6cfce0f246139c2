package extract

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractSpreadsheet renders every sheet as a "=== name ===" header followed
// by tab separated rows.
func extractSpreadsheet(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		b.WriteString("\n=== ")
		b.WriteString(sheet)
		b.WriteString(" ===\n")
		for _, row := range rows {
			if blankRow(row) {
				continue
			}
			b.WriteString(strings.Join(row, "\t"))
			b.WriteString("\n")
		}
	}
	text := strings.TrimSpace(b.String())
	if !hasCellValues(text) {
		return "", nil
	}
	return text, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func hasCellValues(text string) bool {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || (strings.HasPrefix(line, "=== ") && strings.HasSuffix(line, " ===")) {
			continue
		}
		return true
	}
	return false
}
