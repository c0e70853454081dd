package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(ErrorTypeUnknownConversion, "no converter from color24 to date")
	assert.Equal(t, "unknown_conversion: no converter from color24 to date", err.Error())
	assert.NotEmpty(t, err.Stack)

	wrapped := Wrap(fmt.Errorf("short read"), ErrorTypeFile, "reading raw data")
	assert.Equal(t, "file: reading raw data: short read", wrapped.Error())
	assert.Nil(t, Wrap(nil, ErrorTypeFile, "nothing"))
}

func TestIsTypeAndSentinels(t *testing.T) {
	err := Newf(ErrorTypePositiveOverflow, "%d does not fit into %s", 300, "u8bit")
	assert.True(t, IsType(err, ErrorTypePositiveOverflow))
	assert.False(t, IsType(err, ErrorTypeNegativeOverflow))
	assert.True(t, errors.Is(err, ErrPositiveOverflow))
	assert.False(t, errors.Is(err, ErrNegativeOverflow))

	outer := fmt.Errorf("convert: %w", err)
	assert.True(t, errors.Is(outer, ErrPositiveOverflow))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeParse))
}

func TestWrapKeepsStack(t *testing.T) {
	inner := New(ErrorTypeParse, "bad date")
	outer := Wrap(inner, ErrorTypeConfig, "loading config")
	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, errors.Is(outer, ErrParse))
	assert.True(t, IsType(outer, ErrorTypeConfig))
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeRange, "index out of bounds").WithDetail("index", 12).WithDetail("length", 10)
	assert.Equal(t, 12, err.Details["index"])
	assert.Equal(t, 10, err.Details["length"])
}
