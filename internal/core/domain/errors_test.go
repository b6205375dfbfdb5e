package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func allErrors() []error {
	return []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrDimensionMismatch,
		ErrCorpusUnavailable,
		ErrEmbeddingUnavailable,
		ErrCacheMiss,
	}
}

func TestErrors_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNotFound, "not found"},
		{ErrInvalidInput, "invalid input"},
		{ErrDimensionMismatch, "embedding dimension mismatch"},
		{ErrCorpusUnavailable, "corpus unavailable"},
		{ErrEmbeddingUnavailable, "embedding service unavailable"},
		{ErrCacheMiss, "cache miss"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestErrors_Uniqueness(t *testing.T) {
	errs := allErrors()
	for i := range errs {
		for j := range errs {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(errs[i], errs[j]), "%v should not match %v", errs[i], errs[j])
		}
	}
}

func TestErrors_WithWrapping(t *testing.T) {
	for _, base := range allErrors() {
		wrapped := fmt.Errorf("append signature: %w", base)
		assert.ErrorIs(t, wrapped, base)
		assert.Contains(t, wrapped.Error(), base.Error())
	}
}

func TestErrors_DoubleWrapped(t *testing.T) {
	err := fmt.Errorf("%w: recent embeddings: %w", ErrCorpusUnavailable, errors.New("disk I/O error"))

	assert.ErrorIs(t, err, ErrCorpusUnavailable)
	assert.NotErrorIs(t, err, ErrEmbeddingUnavailable)
}
