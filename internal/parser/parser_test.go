package parser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurofin/loan-processor/internal/domain"
)

const statementText = `HDFC BANK
Account Statement
Account Number: XXXX1234
| Date | Description | Debit | Credit | Balance |
|------|-------------|-------|--------|---------|
| 01/01/2026 | SALARY ACME | | 50000.00 | 75000.00 |
| 05/01/2026 | RENT | 20000.00 | | 55000.00 |
` + "\f" + `Page two text
Closing Balance: 55000.00`

type stubFetcher struct {
	data []byte
	err  error
	uris []string
}

func (s *stubFetcher) Fetch(_ context.Context, uri string) ([]byte, error) {
	s.uris = append(s.uris, uri)
	return s.data, s.err
}

type stubTranscriber struct {
	doc *domain.ParsedDocument
	err error
}

func (s stubTranscriber) Transcribe(context.Context, []byte) (*domain.ParsedDocument, error) {
	return s.doc, s.err
}

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseText(t *testing.T) {
	doc := ParseText(statementText)

	require.Len(t, doc.Pages, 2)
	assert.Contains(t, doc.RawText, "--- Page 1 ---")
	assert.Contains(t, doc.RawText, "--- Page 2 ---")
	require.Len(t, doc.Tables, 1)

	table := doc.Tables[0]
	assert.Equal(t, 1, table.Page)
	assert.Equal(t, []string{"Date", "Description", "Debit", "Credit", "Balance"}, table.Headers)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "SALARY ACME", table.Rows[0]["Description"])
	assert.Equal(t, "", table.Rows[0]["Debit"])
	assert.Equal(t, "20000.00", table.Rows[1]["Debit"])
}

func TestParseText_SingleRowIsNotTable(t *testing.T) {
	doc := ParseText("a | b | c\nplain line")
	assert.Empty(t, doc.Tables)
	assert.Len(t, doc.Pages, 1)
}

func TestParse_LocalText(t *testing.T) {
	path := writeTemp(t, "statement.txt", statementText)

	doc, err := New(nil, nil).Parse(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "text", doc.Metadata["format"])
	assert.Equal(t, path, doc.Metadata["source"])
	assert.Equal(t, "2", doc.Metadata["pages"])
	assert.NotEmpty(t, doc.Metadata["size_bytes"])
}

func TestParse_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := New(nil, nil).Parse(ctx, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	_, err = New(nil, nil).Parse(ctx, writeTemp(t, "empty.txt", ""))
	assert.ErrorIs(t, err, ErrEmptyDocument)

	_, err = New(nil, nil).Parse(ctx, writeTemp(t, "sheet.xlsx", "binary"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = New(nil, nil).Parse(ctx, writeTemp(t, "scan.pdf", "%PDF-1.7"))
	assert.ErrorIs(t, err, ErrNoTranscriber)

	_, err = New(nil, nil).Parse(ctx, "gs://bucket/statement.txt")
	assert.Error(t, err)
}

func TestParse_PDFUsesTranscriber(t *testing.T) {
	want := domain.NewParsedDocument([]string{"page one"}, nil)
	p := New(nil, stubTranscriber{doc: want})

	doc, err := p.Parse(context.Background(), writeTemp(t, "statement.pdf", "%PDF-1.7 body"))
	require.NoError(t, err)
	assert.Equal(t, "pdf", doc.Metadata["format"])
	assert.Equal(t, "1", doc.Metadata["pages"])

	p = New(nil, stubTranscriber{err: errors.New("quota")})
	_, err = p.Parse(context.Background(), writeTemp(t, "statement.pdf", "%PDF-1.7 body"))
	assert.ErrorContains(t, err, "quota")
}

func TestParse_GCS(t *testing.T) {
	fetcher := &stubFetcher{data: []byte(statementText)}
	doc, err := New(fetcher, nil).Parse(context.Background(), "gs://loan-docs/s.txt")
	require.NoError(t, err)
	assert.Equal(t, []string{"gs://loan-docs/s.txt"}, fetcher.uris)
	assert.Len(t, doc.Tables, 1)

	fetcher = &stubFetcher{err: errors.New("not found")}
	_, err = New(fetcher, nil).Parse(context.Background(), "gs://loan-docs/s.txt")
	assert.ErrorContains(t, err, "not found")
}
