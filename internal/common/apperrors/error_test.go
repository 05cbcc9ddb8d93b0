package apperrors

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	ErrBaseErr := New("base error")
	assert.Equal(t, "base error", ErrBaseErr.Error())
	assert.Equal(t, "msg", ErrBaseErr.New("msg").Error())
	assert.ErrorIs(t, ErrBaseErr, ErrBaseErr)

	ErrFirstLevel := ErrBaseErr.New("first level")
	assert.Equal(t, "first level", ErrFirstLevel.Error())
	assert.ErrorIs(t, ErrFirstLevel, ErrBaseErr)

	ErrAnotherErr := New("another error")
	ErrWrappedErr := ErrFirstLevel.Err(ErrAnotherErr)
	assert.Equal(t, "first level", ErrWrappedErr.Error())
	assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
	assert.ErrorIs(t, ErrWrappedErr, ErrAnotherErr)

	err := errors.New("error")
	ErrWrappedErr = ErrFirstLevel.Err(err)
	assert.Equal(t, "first level", ErrWrappedErr.Error())
	assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
	assert.ErrorIs(t, ErrWrappedErr, err)

	ErrWrappedErr = ErrFirstLevel.MsgErr("msg", err)
	assert.Equal(t, "msg", ErrWrappedErr.Error())
	assert.ErrorIs(t, ErrWrappedErr, ErrBaseErr)
	assert.ErrorIs(t, ErrWrappedErr, err)
}

func TestErrorSentinelsAreImmutable(t *testing.T) {
	ErrBase := New("base").SetStatusCode(http.StatusInternalServerError)
	ErrChild := ErrBase.New("child").SetStatusCode(http.StatusConflict)

	// annotating a sentinel must not change the sentinel itself
	annotated := ErrChild.Msg("slug already in use")
	assert.Equal(t, "child", ErrChild.Error())
	assert.Equal(t, "slug already in use", annotated.Error())
	assert.ErrorIs(t, annotated, ErrChild)
	assert.ErrorIs(t, annotated, ErrBase)
	assert.Equal(t, http.StatusConflict, annotated.StatusCode())
}

func TestErrorAll(t *testing.T) {
	ErrBase := New("base").SetExpandError(true)
	wrapped := ErrBase.Err(errors.New("cause one"), errors.New("cause two"))
	assert.Equal(t, "base", wrapped.Error())
	assert.Equal(t, "base: cause one; cause two", wrapped.ErrorAll())
}
