package gcsuploader

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseURI(t *testing.T) {
	bucket, object, err := ParseURI("gs://loan-docs/2026/statement.pdf")
	require.NoError(t, err)
	assert.Equal(t, "loan-docs", bucket)
	assert.Equal(t, "2026/statement.pdf", object)

	for _, bad := range []string{"s3://bucket/key", "gs://bucket", "gs://bucket/", "gs:///key", "/tmp/file.pdf"} {
		_, _, err := ParseURI(bad)
		assert.Error(t, err, bad)
	}
}

func TestFetchFromGCS_InvalidURI(t *testing.T) {
	_, err := FetchFromGCS(context.Background(), "/local/file.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid GCS URI")
}

func TestExtractFilenameFromGCSURI(t *testing.T) {
	assert.Equal(t, "file.pdf", ExtractFilenameFromGCSURI("gs://bucket/folder/file.pdf"))
	assert.Equal(t, "bucket", ExtractFilenameFromGCSURI("gs://bucket"))
}

func TestStatementObjectName(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, "statements/2026/03/09/hdfc.pdf", StatementObjectName("/home/user/docs/hdfc.pdf", now))
	assert.Equal(t, "statements/2026/03/09/sbi.txt", StatementObjectName(`C:\docs\sbi.txt`, now))
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", ContentType("a.PDF"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("a.txt"))
	assert.Equal(t, "application/octet-stream", ContentType("a.docx"))
}
