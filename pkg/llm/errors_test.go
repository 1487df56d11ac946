package llm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantType   ErrorType
		retryable  bool
		statusCode int
	}{
		{"openai unauthorized", errors.New("error, status code: 401, status: 401 Unauthorized, message: bad key"), ErrorTypeAuth, false, 401},
		{"gemini bad key", errors.New("status code: 400, message: API key not valid. Please pass a valid API key."), ErrorTypeAuth, false, 400},
		{"anthropic auth", errors.New("anthropic api error type: authentication_error, message: invalid x-api-key"), ErrorTypeAuth, false, 0},
		{"model missing", errors.New("models/gemini-9 is not found for API version v1beta"), ErrorTypeModel, false, 0},
		{"endpoint 404", errors.New("error, status code: 404, status: 404 Not Found"), ErrorTypeEndpoint, false, 404},
		{"connection refused", errors.New("dial tcp 127.0.0.1:1: connect: connection refused"), ErrorTypeEndpoint, true, 0},
		{"deadline", fmt.Errorf("post: %w", errors.New("context deadline exceeded")), ErrorTypeEndpoint, true, 0},
		{"rate limited", errors.New("error, status code: 429, message: Resource has been exhausted"), ErrorTypeQuota, true, 429},
		{"server error", errors.New("error, status code: 503, status: 503 Service Unavailable"), ErrorTypeEndpoint, true, 503},
		{"unknown", errors.New("something odd"), ErrorTypeUnknown, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyError(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.retryable, got.Retryable)
			assert.Equal(t, tt.statusCode, got.StatusCode)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestClassifyError_Nil(t *testing.T) {
	assert.Nil(t, ClassifyError(nil))
}

func TestClassifyError_PassesThroughStructuredError(t *testing.T) {
	orig := NewError(ErrorTypeModel, "model not found", false, nil)
	wrapped := fmt.Errorf("generating: %w", orig)

	assert.Same(t, orig, ClassifyError(wrapped))
	assert.Equal(t, ErrorTypeModel, GetErrorType(wrapped))
	assert.False(t, IsRetryable(wrapped))
}

func TestError_Message(t *testing.T) {
	err := NewErrorWithContext(ErrorTypeAuth, "authentication failed", false, errors.New("401"), "gemini-1.5-pro", "http://x", 401)
	assert.Equal(t, "auth HTTP 401 model=gemini-1.5-pro authentication failed: 401", err.Error())

	bare := NewError(ErrorTypeUnknown, "llm error", false, nil)
	assert.Equal(t, "unknown llm error", bare.Error())
}

func TestGetErrorType_PlainError(t *testing.T) {
	assert.Equal(t, ErrorTypeUnknown, GetErrorType(errors.New("plain")))
	assert.False(t, IsRetryable(errors.New("plain")))
}
