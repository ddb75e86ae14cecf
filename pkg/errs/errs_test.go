package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/soundprediction/recall/pkg/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := errs.New(errs.CodeValidation, "limit must be positive")
	assert.Equal(t, "validation: limit must be positive", err.Error())

	wrapped := errs.Wrap(errs.CodeStore, "search failed", errors.New("boom"))
	assert.Equal(t, "store: search failed: boom", wrapped.Error())
	assert.Equal(t, "boom", errors.Unwrap(wrapped).Error())
}

func TestWrapPreservesInnerCode(t *testing.T) {
	inner := errs.New(errs.CodeService, "embedding provider unavailable")
	outer := errs.Wrap(errs.CodeOperation, "semantic search failed", fmt.Errorf("strategy: %w", inner))

	assert.Equal(t, errs.CodeService, outer.Code)
	assert.True(t, errs.Is(outer, errs.CodeService))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, errs.Wrap(errs.CodeStore, "nothing", nil))
}

func TestNotFoundCarriesID(t *testing.T) {
	err := errs.NotFound("memory", "mem-123")
	require.NotNil(t, err.Data)
	assert.Equal(t, "mem-123", err.Data["id"])
	assert.Equal(t, errs.CodeNotFound, err.Code)
}

func TestClassifyStore(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "connectivity",
			err:     errors.New("dial tcp 127.0.0.1:7687: connection refused"),
			message: "graph store unreachable",
		},
		{
			name:    "constraint",
			err:     errors.New("Neo.ClientError.Schema.ConstraintValidationFailed: already exists"),
			message: "graph store constraint violation",
		},
		{
			name:    "missing index",
			err:     errors.New("There is no such vector schema index: memory_embeddings"),
			message: "required store capability missing",
		},
		{
			name:    "unknown",
			err:     errors.New("something odd"),
			message: "graph store query failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := errs.ClassifyStore(tt.err)
			require.NotNil(t, classified)
			assert.Equal(t, errs.CodeStore, classified.Code)
			assert.Equal(t, tt.message, classified.Message)
			assert.ErrorIs(t, classified, tt.err)
		})
	}

	assert.Nil(t, errs.ClassifyStore(nil))
}
