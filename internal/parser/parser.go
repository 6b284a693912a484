// Package parser turns a statement file into a ParsedDocument.
//
// Plain-text statements are parsed locally: form feeds separate pages and
// pipe-delimited blocks become tables. PDFs are handed to a Transcriber.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/gcsuploader"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither PDF nor text.
	ErrUnsupportedFormat = errors.New("unsupported document format")
	// ErrNoTranscriber is returned for PDFs when no transcriber is configured.
	ErrNoTranscriber = errors.New("pdf parsing requires a transcriber")
	// ErrEmptyDocument is returned for zero-byte inputs.
	ErrEmptyDocument = errors.New("document is empty")
)

// Fetcher retrieves remote documents by URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}

// Transcriber converts PDF bytes into pages and tables.
type Transcriber interface {
	Transcribe(ctx context.Context, pdfBytes []byte) (*domain.ParsedDocument, error)
}

// Parser reads documents from the local filesystem or gs:// URIs.
type Parser struct {
	fetcher     Fetcher
	transcriber Transcriber
}

// New creates a Parser. Either dependency may be nil; the matching inputs
// then fail with an error.
func New(fetcher Fetcher, transcriber Transcriber) *Parser {
	return &Parser{fetcher: fetcher, transcriber: transcriber}
}

// Parse reads and parses the document at path.
func (p *Parser) Parse(ctx context.Context, path string) (*domain.ParsedDocument, error) {
	data, err := p.read(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}

	format, err := detectFormat(path, data)
	if err != nil {
		return nil, err
	}

	var doc *domain.ParsedDocument
	switch format {
	case "pdf":
		if p.transcriber == nil {
			return nil, ErrNoTranscriber
		}
		doc, err = p.transcriber.Transcribe(ctx, data)
		if err != nil {
			return nil, fmt.Errorf("transcribe %s: %w", path, err)
		}
		if doc == nil {
			doc = domain.NewParsedDocument(nil, nil)
		}
	case "text":
		doc = ParseText(string(data))
	}

	if doc.Metadata == nil {
		doc.Metadata = map[string]string{}
	}
	doc.Metadata["source"] = path
	doc.Metadata["format"] = format
	doc.Metadata["size_bytes"] = strconv.Itoa(len(data))
	doc.Metadata["pages"] = strconv.Itoa(doc.PageCount())
	return doc, nil
}

func (p *Parser) read(ctx context.Context, path string) ([]byte, error) {
	if gcsuploader.IsGCSURI(path) {
		if p.fetcher == nil {
			return nil, fmt.Errorf("no storage fetcher configured for %s", path)
		}
		return p.fetcher.Fetch(ctx, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func detectFormat(path string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "pdf", nil
	case ".txt", ".text":
		return "text", nil
	}
	if strings.HasPrefix(string(data), "%PDF-") {
		return "pdf", nil
	}
	return "", fmt.Errorf("%s: %w", filepath.Ext(path), ErrUnsupportedFormat)
}
