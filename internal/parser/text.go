package parser

import (
	"strings"

	"github.com/neurofin/loan-processor/internal/domain"
)

const pageBreak = "\f"

// ParseText splits text into pages on form feeds and lifts pipe-delimited
// blocks of at least two rows into tables. The first row of a block is its
// header; separator rows like |---|---| are skipped.
func ParseText(text string) *domain.ParsedDocument {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	rawPages := strings.Split(text, pageBreak)

	pages := make([]string, 0, len(rawPages))
	var tables []domain.Table
	for _, page := range rawPages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		pages = append(pages, page)
		for _, block := range pipeBlocks(page) {
			tables = append(tables, domain.NewTable(len(pages), len(tables), block[0], block[1:]))
		}
	}
	return domain.NewParsedDocument(pages, tables)
}

func pipeBlocks(page string) [][][]string {
	var blocks [][][]string
	var current [][]string
	flush := func() {
		if len(current) >= 2 {
			blocks = append(blocks, current)
		}
		current = nil
	}

	for _, line := range strings.Split(page, "\n") {
		line = strings.TrimSpace(line)
		if strings.Count(line, "|") < 2 {
			flush()
			continue
		}
		cells := splitRow(line)
		if isSeparator(cells) {
			continue
		}
		current = append(current, cells)
	}
	flush()
	return blocks
}

func splitRow(line string) []string {
	line = strings.TrimPrefix(line, "|")
	line = strings.TrimSuffix(line, "|")
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	return cells
}

func isSeparator(cells []string) bool {
	for _, c := range cells {
		if strings.Trim(c, "-:= ") != "" {
			return false
		}
	}
	return true
}
