package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/soundprediction/graphwalk"
	"github.com/soundprediction/graphwalk/pkg/traversal"
	"github.com/soundprediction/graphwalk/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: x: %w", graphwalk.ErrStartNotFound, types.ErrStaleVertex), http.StatusNotFound, "not_found"},
		{fmt.Errorf("expand: %w", types.ErrStaleEdge), http.StatusConflict, "stale_graph"},
		{fmt.Errorf("%w: depth", traversal.ErrInvalidConfiguration), http.StatusBadRequest, "invalid_traversal"},
		{traversal.ErrNoStartVertex, http.StatusBadRequest, "invalid_traversal"},
		{errors.New("boom"), http.StatusInternalServerError, "traversal_failed"},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := classifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}
