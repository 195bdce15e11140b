package apierror_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jimyag/panelbot/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		testFunc func(*testing.T)
	}{
		{
			name: "Error_Error",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.NewError("TestError", "test message")
				assert.Equal(t, "[TestError] test message", err.Error())
			},
		},
		{
			name: "Error_Error_WithRawError",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.NewErrorWithRaw("TestError", "test message", fmt.Errorf("raw error"))
				assert.Equal(t, "[TestError] test message (RawError: raw error)", err.Error())
			},
		},
		{
			name: "Error_Is_SameCode",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err1 := apierror.NewError("TestError", "message 1")
				err2 := apierror.NewError("TestError", "message 2")
				assert.True(t, errors.Is(err1, err2))
			},
		},
		{
			name: "Error_Is_DifferentCode",
			testFunc: func(t *testing.T) {
				t.Parallel()
				assert.False(t, errors.Is(apierror.ErrNoCapacity, apierror.ErrQuotaExceeded))
			},
		},
		{
			name: "Error_Is_ThroughFmtWrap",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := fmt.Errorf("create instance: %w", apierror.Wrap(apierror.ErrQuotaExceeded, nil))
				assert.True(t, errors.Is(err, apierror.ErrQuotaExceeded))
			},
		},
		{
			name: "Error_Unwrap_WithRawError",
			testFunc: func(t *testing.T) {
				t.Parallel()
				rawErr := fmt.Errorf("raw error")
				err := apierror.Wrap(apierror.ErrRemoteTransport, rawErr)
				assert.Equal(t, rawErr, errors.Unwrap(err))
			},
		},
		{
			name: "WrapError_KeepsKind",
			testFunc: func(t *testing.T) {
				t.Parallel()
				err := apierror.WrapError(apierror.ErrCreationFailed, "egg requires variable", nil)
				assert.Equal(t, "CreationFailed", err.Code)
				assert.Equal(t, http.StatusUnprocessableEntity, err.HTTPStatus)
				assert.Equal(t, "egg requires variable", err.Message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.testFunc)
	}
}

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name   string
		err    error
		expect bool
	}{
		{name: "transport", err: apierror.Wrap(apierror.ErrRemoteTransport, errors.New("timeout")), expect: true},
		{name: "no capacity", err: apierror.ErrNoCapacity, expect: true},
		{name: "placement conflict wrapped", err: fmt.Errorf("submit: %w", apierror.ErrPlacementConflict), expect: true},
		{name: "quota", err: apierror.ErrQuotaExceeded, expect: false},
		{name: "template", err: apierror.ErrTemplateNotFound, expect: false},
		{name: "plain error", err: errors.New("boom"), expect: false},
		{name: "nil", err: nil, expect: false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expect, apierror.IsRetryable(tc.err))
		})
	}
}

func TestErrorResponse_JSONHidesRawError(t *testing.T) {
	t.Parallel()

	raw := errors.New("panel said: SQLSTATE[23000] duplicate entry")
	resp := apierror.NewErrorResponse("req-1", apierror.Wrap(apierror.ErrRemoteTransport, raw))

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	assert.NotContains(t, string(data), "SQLSTATE")
	assert.Contains(t, string(data), `"code":"RemoteTransportFailure"`)
	assert.Contains(t, string(data), `"requestID":"req-1"`)
	assert.Contains(t, resp.Error(), "RequestID: req-1")
}
