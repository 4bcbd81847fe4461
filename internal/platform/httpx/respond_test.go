package httpx

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRespondErrorMapsWrappedSentinels(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", fmt.Errorf("widget %w", ErrNotFound), http.StatusNotFound},
		{"conflict", fmt.Errorf("%w: run already committed", ErrDuplicate), http.StatusConflict},
		{"validation", fmt.Errorf("%w: quantity below zero", ErrValidation), http.StatusBadRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)
			require.Equal(t, tc.status, rec.Code)
			require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestRespondErrorHidesUnmappedDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pg: connection refused"))
	require.NotContains(t, rec.Body.String(), "connection refused")
}

func TestMapped(t *testing.T) {
	require.True(t, Mapped(fmt.Errorf("row %w", ErrNotFound)))
	require.True(t, Mapped(fmt.Errorf("%w: dup", ErrDuplicate)))
	require.True(t, Mapped(fmt.Errorf("%w: bad", ErrValidation)))
	require.False(t, Mapped(errors.New("boom")))
}
