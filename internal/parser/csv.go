package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/chmview/internal/textenc"
)

const csvBatchSize = 20

// CSVParser handles CSV files. The first row names the columns; data rows
// are grouped into sections of csvBatchSize.
type CSVParser struct {
	Detector textenc.Detector
}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Attachment, error) {
	content, _, err := readText(p.Detector, r)
	if err != nil {
		return nil, err
	}
	reader := csv.NewReader(strings.NewReader(content))
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Attachment{Title: stem(filename), Sections: []Section{}}
	if len(records) == 0 {
		return doc, nil
	}

	headers := records[0]
	rows := records[1:]
	for i := 0; i < len(rows); i += csvBatchSize {
		end := min(i+csvBatchSize, len(rows))

		var text strings.Builder
		for _, row := range rows[i:end] {
			cells := make([]string, len(row))
			for j, cell := range row {
				if j < len(headers) {
					cells[j] = headers[j] + ": " + cell
				} else {
					cells[j] = cell
				}
			}
			text.WriteString(strings.Join(cells, ", "))
			text.WriteString("\n")
		}

		doc.Sections = append(doc.Sections, Section{
			Title: fmt.Sprintf("Rows %d-%d", i+2, end+1), // 1-indexed, header is row 1
			Text:  strings.TrimSuffix(text.String(), "\n"),
		})
	}
	return doc, nil
}
