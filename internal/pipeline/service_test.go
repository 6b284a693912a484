package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurofin/loan-processor/internal/domain"
	"github.com/neurofin/loan-processor/internal/pipeline"
)

func TestAssessAndStore_Success(t *testing.T) {
	store := &MockStore{}
	svc := pipeline.NewService(pipeline.New(&MockParser{}, &MockOracle{}), store, "keyword")

	res, err := svc.AssessAndStore(context.Background(), "gs://bucket/statement.txt")
	require.NoError(t, err)
	require.True(t, res.Success)

	require.Len(t, store.Started, 1)
	assert.Equal(t, store.Started[0], res.RunID)
	assert.Equal(t, []string{res.RunID}, store.Succeeded)
	assert.Empty(t, store.Failed)
	require.Len(t, store.Inserted, 1)
	assert.Same(t, res, store.Inserted[0])
}

func TestAssessAndStore_PipelineFailureIsStored(t *testing.T) {
	store := &MockStore{}
	parser := &MockParser{
		ParseFunc: func(context.Context, string) (*domain.ParsedDocument, error) {
			return nil, errBoom
		},
	}
	svc := pipeline.NewService(pipeline.New(parser, &MockOracle{}), store, "keyword")

	res, err := svc.AssessAndStore(context.Background(), "missing.pdf")
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, store.Inserted, 1)
	assert.Contains(t, store.Failed[res.RunID], "boom")
	assert.Empty(t, store.Succeeded)
}

func TestAssessAndStore_StoreErrors(t *testing.T) {
	t.Run("start run", func(t *testing.T) {
		store := &MockStore{StartRunErr: errBoom}
		svc := pipeline.NewService(pipeline.New(&MockParser{}, &MockOracle{}), store, "keyword")

		res, err := svc.AssessAndStore(context.Background(), "statement.txt")
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Nil(t, res)
	})

	t.Run("insert", func(t *testing.T) {
		store := &MockStore{InsertErr: errBoom}
		svc := pipeline.NewService(pipeline.New(&MockParser{}, &MockOracle{}), store, "keyword")

		res, err := svc.AssessAndStore(context.Background(), "statement.txt")
		require.Error(t, err)
		require.NotNil(t, res)
		assert.Contains(t, store.Failed[res.RunID], "boom")
	})

	t.Run("run status after insert", func(t *testing.T) {
		store := &MockStore{MarkErr: errBoom}
		svc := pipeline.NewService(pipeline.New(&MockParser{}, &MockOracle{}), store, "keyword")

		res, err := svc.AssessAndStore(context.Background(), "statement.txt")
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Len(t, store.Inserted, 1)
		assert.Equal(t, []string{res.RunID}, store.Succeeded)
	})
}

func TestAssess_DoesNotTouchStore(t *testing.T) {
	store := &MockStore{}
	svc := pipeline.NewService(pipeline.New(&MockParser{}, &MockOracle{}), store, "keyword")

	res := svc.Assess(context.Background(), "statement.txt")
	assert.True(t, res.Success)
	assert.Empty(t, store.Started)
	assert.Empty(t, store.Inserted)
}

func TestRun(t *testing.T) {
	t.Run("without store", func(t *testing.T) {
		svc := pipeline.NewService(pipeline.New(&MockParser{}, &MockOracle{}), nil, "keyword")
		assert.False(t, svc.StorageEnabled())

		res, err := svc.Run(context.Background(), "statement.txt")
		require.NoError(t, err)
		assert.True(t, res.Success)

		_, err = svc.AssessAndStore(context.Background(), "statement.txt")
		assert.Error(t, err)
	})

	t.Run("with store", func(t *testing.T) {
		store := &MockStore{}
		svc := pipeline.NewService(pipeline.New(&MockParser{}, &MockOracle{}), store, "keyword")
		assert.True(t, svc.StorageEnabled())

		res, err := svc.Run(context.Background(), "statement.txt")
		require.NoError(t, err)
		assert.Equal(t, []string{res.RunID}, store.Succeeded)
	})
}
