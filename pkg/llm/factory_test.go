package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-vizboard/pkg/apperrors"
)

func TestClientFactory_Create(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		wantType any
	}{
		{"default is openai", "", &Client{}},
		{"openai", ProviderOpenAI, &Client{}},
		{"anthropic", ProviderAnthropic, &AnthropicClient{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewClientFactory(ProviderConfig{Provider: tt.provider, Endpoint: "http://localhost:1", Model: "m"}, zap.NewNop())
			client, err := f.Create("key")
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, client)
			assert.Equal(t, "m", client.GetModel())
		})
	}
}

func TestClientFactory_Create_MissingKey(t *testing.T) {
	f := NewClientFactory(ProviderConfig{Endpoint: "http://localhost:1", Model: "m"}, zap.NewNop())
	_, err := f.Create("")
	assert.ErrorIs(t, err, apperrors.ErrMissingAPIKey)
}

func TestClientFactory_Create_UnknownProvider(t *testing.T) {
	f := NewClientFactory(ProviderConfig{Provider: "bard", Model: "m"}, zap.NewNop())
	_, err := f.Create("key")
	assert.Error(t, err)
	assert.Equal(t, "bard", f.Provider())
}
