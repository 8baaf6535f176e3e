package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromUpstreamKeepsBackendMessage(t *testing.T) {
	err := FromUpstream(http.StatusUnprocessableEntity, "score exceeds weight", "Failed to save scores")
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Equal(t, "score exceeds weight", err.Message)
	assert.Equal(t, ErrValidation.Code, err.Code)
}

func TestFromUpstreamFallbacks(t *testing.T) {
	err := FromUpstream(http.StatusInternalServerError, "  ", "Failed to fetch attendance")
	assert.Equal(t, "Failed to fetch attendance", err.Message)
	assert.Equal(t, ErrUpstream.Code, err.Code)

	err = FromUpstream(0, "", "")
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Equal(t, "Internal server error", err.Message)
}

func TestFromUpstreamUnauthorized(t *testing.T) {
	err := FromUpstream(http.StatusUnauthorized, "token expired", "")
	assert.True(t, errors.Is(err, ErrUnauthorized))
}

func TestCloneMatchesOriginal(t *testing.T) {
	cloned := Clone(ErrNoChanges, "nothing to submit")
	wrapped := fmt.Errorf("save: %w", cloned)
	assert.True(t, errors.Is(wrapped, ErrNoChanges))
	assert.Equal(t, "no changes to save", ErrNoChanges.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	err := FromError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, err.Status)
	assert.Nil(t, FromError(nil))
}
