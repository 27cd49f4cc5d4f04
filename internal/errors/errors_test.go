package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/galaxydraft/draft-server/internal/errors"
)

func TestErrorMessage(t *testing.T) {
	err := apperr.NotFound("pod not found")
	assert.Equal(t, "pod not found", err.Error())

	wrapped := apperr.Wrap(stderrors.New("boom"), "save failed")
	assert.Equal(t, "save failed: boom", wrapped.Error())
}

func TestWrapPreservesCode(t *testing.T) {
	inner := apperr.Conflictf("pod at version %d", 3)
	outer := apperr.Wrap(inner, "resolution failed")

	assert.True(t, apperr.IsConflict(outer))
	assert.Equal(t, apperr.CodeConflict, apperr.GetCode(outer))
}

func TestWrapUncategorizedIsUnknown(t *testing.T) {
	wrapped := apperr.Wrap(fmt.Errorf("raw"), "context")
	assert.Equal(t, apperr.CodeUnknown, apperr.GetCode(wrapped))
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, apperr.Wrap(nil, "nothing"))
	assert.Nil(t, apperr.Wrapf(nil, "nothing %d", 1))
}

func TestUnwrap(t *testing.T) {
	inner := stderrors.New("boom")
	wrapped := apperr.Wrap(inner, "outer")
	assert.True(t, stderrors.Is(wrapped, inner))
}

func TestWithMeta(t *testing.T) {
	err := apperr.Internal("storage down").
		WithMeta("pod_id", "pod-1").
		WithMeta("seat", 3)

	meta := apperr.GetMeta(err)
	require.NotNil(t, meta)
	assert.Equal(t, "pod-1", meta["pod_id"])
	assert.Equal(t, 3, meta["seat"])
}

func TestWrapCopiesMeta(t *testing.T) {
	inner := apperr.Validation("bad pick").WithMeta("card_id", "SPK-001")
	outer := apperr.Wrap(inner, "pick rejected")

	meta := apperr.GetMeta(outer)
	require.NotNil(t, meta)
	assert.Equal(t, "SPK-001", meta["card_id"])

	outer.WithMeta("extra", true)
	assert.NotContains(t, apperr.GetMeta(inner), "extra")
}

func TestCodeHelpers(t *testing.T) {
	assert.True(t, apperr.IsNotFound(apperr.NotFoundf("pod %s", "p1")))
	assert.True(t, apperr.IsValidation(apperr.Validation("nope")))
	assert.True(t, apperr.IsInvalidArgument(apperr.InvalidArgument("nope")))
	assert.True(t, apperr.IsForbidden(apperr.Forbidden("host only")))
	assert.True(t, apperr.IsAlreadyExists(apperr.AlreadyExists("dupe")))
	assert.False(t, apperr.IsNotFound(stderrors.New("plain")))
	assert.Equal(t, apperr.CodeUnknown, apperr.GetCode(stderrors.New("plain")))
}
