package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfAndMessage(t *testing.T) {
	notFound := NotFound("portfolio")
	wrapped := fmt.Errorf("load: %w", notFound)

	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.Equal(t, "load: portfolio not found", Message(wrapped))
	assert.ErrorIs(t, wrapped, NotFound("portfolio"))

	internal := Internal(errors.New("dial tcp: refused"), "failed to save")
	assert.Equal(t, KindInternal, KindOf(internal))
	assert.Equal(t, "internal server error", Message(internal))

	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.Nil(t, Wrap(KindInvalidArgument, nil, "x"))
}

func TestIsComparesKindAndMessage(t *testing.T) {
	assert.ErrorIs(t, Forbidden("strategy"), Forbidden("strategy"))
	assert.NotErrorIs(t, Forbidden("strategy"), Forbidden("portfolio"))
	assert.NotErrorIs(t, NotFound("strategy"), Forbidden("strategy"))
	assert.Equal(t, "not_found", KindNotFound.String())
}
