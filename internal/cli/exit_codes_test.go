package cli

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	clierrors "github.com/ariel-frischer/relnotes/internal/errors"
	"github.com/ariel-frischer/relnotes/internal/github"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		err  error
		want int
	}{
		"nil error": {
			err:  nil,
			want: ExitSuccess,
		},
		"plain error": {
			err:  errors.New("boom"),
			want: ExitRuntimeFailure,
		},
		"explicit exit error": {
			err:  NewExitError(ExitDocumentNotFound, errors.New("no section")),
			want: ExitDocumentNotFound,
		},
		"wrapped exit error": {
			err:  fmt.Errorf("outer: %w", NewExitError(ExitDocumentNotFound, errors.New("no section"))),
			want: ExitDocumentNotFound,
		},
		"deadline exceeded": {
			err:  fmt.Errorf("fetching: %w", context.DeadlineExceeded),
			want: ExitTimeout,
		},
		"github not found": {
			err:  fmt.Errorf("fetching: %w", github.ErrNotFound),
			want: ExitDocumentNotFound,
		},
		"argument error": {
			err:  clierrors.NewArgumentError("bad version"),
			want: ExitInvalidArguments,
		},
		"configuration error": {
			err:  clierrors.NewConfigError("missing token"),
			want: ExitInvalidArguments,
		},
		"network error": {
			err:  clierrors.NewNetworkError("connection refused"),
			want: ExitRuntimeFailure,
		},
		"runtime error": {
			err:  clierrors.NewRuntimeError("db locked"),
			want: ExitRuntimeFailure,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestExitError_Unwrap(t *testing.T) {
	t.Parallel()

	inner := errors.New("inner")
	err := NewExitError(ExitTimeout, inner)

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "inner", err.Error())
}
