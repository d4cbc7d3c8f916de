package extract

import (
	"bytes"
	"strings"

	"github.com/fumiama/go-docx"
)

// readDOCX joins paragraph text by newline, then appends each table's rows
// as pipe-delimited cell text.
func readDOCX(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var paragraphs []string
	var tables []string

	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			paragraphs = append(paragraphs, it.String())
		case *docx.Table:
			for _, row := range it.TableRows {
				cells := make([]string, 0, len(row.TableCells))
				for _, cell := range row.TableCells {
					var cellText []string
					for _, p := range cell.Paragraphs {
						cellText = append(cellText, p.String())
					}
					cells = append(cells, strings.Join(cellText, " "))
				}
				tables = append(tables, strings.Join(cells, " | "))
			}
		}
	}

	text := strings.Join(paragraphs, "\n")
	if len(tables) > 0 {
		text += "\n" + strings.Join(tables, "\n")
	}
	return text, nil
}
