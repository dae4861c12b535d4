package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "message only",
			err:  New(CodeInvalid, "problem is required"),
			want: "problem is required",
		},
		{
			name: "with operation",
			err:  New(CodeNotFound, "solve abc not found").WithOp("solve.status"),
			want: "solve.status: solve abc not found",
		},
		{
			name: "with cause",
			err:  Wrap(stderrors.New("tcp timeout"), CodeInternal, "registry lookup failed"),
			want: "registry lookup failed: tcp timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapPreservesChain(t *testing.T) {
	cause := stderrors.New("boom")
	err := Wrap(cause, CodeInvalid, "adapter rejected model")

	assert.True(t, stderrors.Is(err, cause), "wrapped cause should stay reachable")
	assert.Equal(t, cause, err.Unwrap())
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, CodeInternal, "ignored"))
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"classified", New(CodeConflict, "already finished"), CodeConflict},
		{"wrapped classified", Wrap(New(CodeNotFound, "missing"), CodeInvalid, "outer"), CodeInvalid},
		{"plain error", stderrors.New("plain"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(CodeInvalid, "bad"), http.StatusBadRequest},
		{New(CodeNotFound, "gone"), http.StatusNotFound},
		{New(CodeConflict, "done"), http.StatusConflict},
		{New(CodeInternal, "oops"), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "status for %v", tt.err)
	}
}

func TestStackCapture(t *testing.T) {
	err := New(CodeInternal, "with stack")
	require.NotNil(t, err)
	assert.NotEmpty(t, err.Stack, "construction should capture a stack")
}
