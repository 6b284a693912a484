package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/logger"
	"github.com/neurofin/loan-processor/internal/risk"
)

// Classify determines the document type and quality from its text.
func (o *Oracle) Classify(ctx context.Context, rawText string) (*domain.ClassificationResult, error) {
	var out classificationOutput
	if err := o.generateJSON(ctx, []*genai.Part{{Text: classifyPrompt(rawText)}}, &out); err != nil {
		return nil, fmt.Errorf("Classify: %w", err)
	}
	c := out.toDomain()
	log := logger.FromContext(ctx)
	log.Info().
		Str("document_type", string(c.DocumentType)).
		Float64("quality_score", c.QualityScore).
		Msg("Classify: model answered")
	return c, nil
}

// Extract pulls account details and transactions from a bank statement.
func (o *Oracle) Extract(ctx context.Context, rawText string, tables []domain.Table) (*domain.ExtractedData, error) {
	var data domain.ExtractedData
	if err := o.generateJSON(ctx, []*genai.Part{{Text: extractPrompt(rawText, tables)}}, &data); err != nil {
		return nil, fmt.Errorf("Extract: %w", err)
	}
	if err := normalizeExtraction(&data); err != nil {
		return nil, fmt.Errorf("Extract: %w", err)
	}
	log := logger.FromContext(ctx)
	log.Info().Int("transactions", len(data.Transactions)).Msg("Extract: model answered")
	return &data, nil
}

// Validate asks the model for a risk assessment of precomputed checks.
func (o *Oracle) Validate(ctx context.Context, in risk.Input) (*domain.RiskAssessment, error) {
	var out assessmentOutput
	if err := o.generateJSON(ctx, []*genai.Part{{Text: validatePrompt(in)}}, &out); err != nil {
		return nil, fmt.Errorf("Validate: %w", err)
	}
	return out.toDomain(), nil
}

// Transcribe turns PDF bytes into page texts and tables.
func (o *Oracle) Transcribe(ctx context.Context, pdfBytes []byte) (*domain.ParsedDocument, error) {
	parts := []*genai.Part{
		{Text: transcribePrompt},
		{
			InlineData: &genai.Blob{
				MIMEType: "application/pdf",
				Data:     pdfBytes,
			},
		},
	}
	var out transcriptionOutput
	if err := o.generateJSON(ctx, parts, &out); err != nil {
		return nil, fmt.Errorf("Transcribe: %w", err)
	}
	if len(out.Pages) == 0 {
		return nil, fmt.Errorf("Transcribe: model returned no pages")
	}
	return out.toDomain(), nil
}
