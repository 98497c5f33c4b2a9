package llm

import (
	"encoding/json"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireTemperature(t *testing.T) {
	t.Run("zero survives serialization", func(t *testing.T) {
		req := openai.ChatCompletionRequest{
			Model:       defaultOpenAIModel,
			Messages:    []openai.ChatCompletionMessage{{Role: "user", Content: "q"}},
			MaxTokens:   1024,
			Temperature: wireTemperature(0),
		}

		data, err := json.Marshal(req)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(data, &decoded))
		temp, ok := decoded["temperature"]
		require.True(t, ok, "temperature missing from request body")
		assert.InDelta(t, 0, temp.(float64), 1e-30)
	})

	t.Run("nonzero passes through", func(t *testing.T) {
		assert.Equal(t, float32(0.7), wireTemperature(0.7))
	})
}

func TestOpenAIDefaultModel(t *testing.T) {
	assert.Equal(t, "gpt-4o-mini", defaultOpenAIModel)
}
