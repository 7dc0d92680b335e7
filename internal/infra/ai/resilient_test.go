package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

type flakyEmbedder struct {
	vectors [][]float32
	err     error
	calls   int
}

func (f *flakyEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.vectors, nil
}

func embedderTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEmbedUsesPrimaryWhenHealthy(t *testing.T) {
	primary := &flakyEmbedder{vectors: [][]float32{{1, 2, 3}}}
	e := NewResilientEmbedder(primary, 3, embedderTestLogger())

	vectors, err := e.Embed(context.Background(), []string{"hello"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{1, 2, 3}}, vectors)
	require.Equal(t, 1, primary.calls)
}

func TestEmbedDegradesOnPrimaryFailure(t *testing.T) {
	primary := &flakyEmbedder{err: errors.New("provider down")}
	e := NewResilientEmbedder(primary, 8, embedderTestLogger())

	vectors, err := e.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	for _, vector := range vectors {
		require.Len(t, vector, 8)
		for _, v := range vector {
			require.NotZero(t, v)
		}
	}
}

func TestEmbedDegradedVectorsAreDeterministic(t *testing.T) {
	e := NewResilientEmbedder(nil, 16, embedderTestLogger())

	first, err := e.Embed(context.Background(), []string{"same text"})
	require.NoError(t, err)
	second, err := e.Embed(context.Background(), []string{"same text"})
	require.NoError(t, err)
	require.Equal(t, first, second)

	other, err := e.Embed(context.Background(), []string{"different text"})
	require.NoError(t, err)
	require.NotEqual(t, first[0], other[0])
}

func TestEmbedRetriesPrimaryEachCall(t *testing.T) {
	primary := &flakyEmbedder{err: errors.New("provider down")}
	e := NewResilientEmbedder(primary, 4, embedderTestLogger())

	_, err := e.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)

	// provider recovers
	primary.err = nil
	primary.vectors = [][]float32{{9, 9, 9, 9}}
	vectors, err := e.Embed(context.Background(), []string{"x"})
	require.NoError(t, err)
	require.Equal(t, [][]float32{{9, 9, 9, 9}}, vectors)
	require.Equal(t, 2, primary.calls)
}

func TestEmbedEmptyInput(t *testing.T) {
	e := NewResilientEmbedder(nil, 4, embedderTestLogger())
	vectors, err := e.Embed(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, vectors)
}
