package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsf-ai/knowledge-assistant/internal/llm"
	"github.com/nsf-ai/knowledge-assistant/internal/model"
	"github.com/nsf-ai/knowledge-assistant/internal/rewrite"
	"github.com/nsf-ai/knowledge-assistant/internal/store"
	"github.com/nsf-ai/knowledge-assistant/pkg/apperr"
	"github.com/nsf-ai/knowledge-assistant/pkg/logger"
)

type fakeLLM struct {
	mu       sync.Mutex
	response string
	calls    int
	lastReq  *llm.CompletionRequest
}

func (f *fakeLLM) Complete(ctx context.Context, req *llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastReq = req
	return &llm.CompletionResponse{Content: f.response}, nil
}

func (f *fakeLLM) Name() string { return "fake" }

type fakeQueryEngine struct {
	mu      sync.Mutex
	answer  string
	err     error
	queries []string
	inserts []string
}

func (f *fakeQueryEngine) Query(ctx context.Context, question string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, question)
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeQueryEngine) Insert(ctx context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, text)
	if f.err != nil {
		return f.err
	}
	return nil
}

type chatFixture struct {
	svc           *ChatService
	conversations *store.ConversationStore
	llm           *fakeLLM
	engine        *fakeQueryEngine
}

func newChatFixture(t *testing.T) *chatFixture {
	t.Helper()

	db, err := store.NewMemoryDB()
	require.NoError(t, err)

	conversations := store.NewConversationStore(db)
	llmClient := &fakeLLM{response: "standalone question"}
	eng := &fakeQueryEngine{answer: "the engine answer"}
	svc := NewChatService(conversations, rewrite.New(llmClient, ""), eng, nil, logger.NewNop())

	return &chatFixture{
		svc:           svc,
		conversations: conversations,
		llm:           llmClient,
		engine:        eng,
	}
}

func TestHandleTurn(t *testing.T) {
	ctx := context.Background()

	t.Run("first turn creates conversation and persists one row", func(t *testing.T) {
		f := newChatFixture(t)

		resp, err := f.svc.HandleTurn(ctx, 1, "What programs run in Nairobi?", nil)
		require.NoError(t, err)
		assert.Equal(t, "the engine answer", resp.Response)
		require.NotZero(t, resp.ConversationID)

		msgs, err := f.conversations.Messages(ctx, resp.ConversationID)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "What programs run in Nairobi?", msgs[0].UserMessage)
		assert.Equal(t, "the engine answer", msgs[0].AIResponse)

		// No history yet, so the rewriter must not call the model.
		assert.Zero(t, f.llm.calls)
		require.Len(t, f.engine.queries, 1)
		assert.Equal(t, "What programs run in Nairobi?", f.engine.queries[0])
	})

	t.Run("title is the message, long messages truncated", func(t *testing.T) {
		f := newChatFixture(t)

		short := strings.Repeat("a", 50)
		resp, err := f.svc.HandleTurn(ctx, 1, short, nil)
		require.NoError(t, err)

		long := strings.Repeat("b", 80)
		_, err = f.svc.HandleTurn(ctx, 1, long, nil)
		require.NoError(t, err)

		summaries, err := f.svc.Conversations(ctx, 1)
		require.NoError(t, err)
		require.Len(t, summaries, 2)

		byID := map[uint]string{}
		for _, s := range summaries {
			byID[s.ID] = s.Title
		}
		assert.Equal(t, short, byID[resp.ConversationID])
		assert.Contains(t, byID, resp.ConversationID)
		for id, title := range byID {
			if id != resp.ConversationID {
				assert.Equal(t, strings.Repeat("b", 50)+"...", title)
			}
		}
	})

	t.Run("follow-up turn feeds recent history to the rewriter", func(t *testing.T) {
		f := newChatFixture(t)

		resp, err := f.svc.HandleTurn(ctx, 1, "Tell me about Upili", nil)
		require.NoError(t, err)

		base := time.Now().UTC()
		for i, turn := range []string{"q2", "q3", "q4"} {
			require.NoError(t, f.conversations.AppendTurn(ctx, &model.Message{
				ConversationID: resp.ConversationID,
				UserMessage:    turn,
				AIResponse:     "a" + turn,
				Timestamp:      base.Add(time.Duration(i+1) * time.Second),
			}))
		}

		_, err = f.svc.HandleTurn(ctx, 1, "And its outcomes?", &resp.ConversationID)
		require.NoError(t, err)

		require.Equal(t, 1, f.llm.calls)
		require.NotEmpty(t, f.llm.lastReq.Messages)
		prompt := f.llm.lastReq.Messages[len(f.llm.lastReq.Messages)-1].Content
		assert.Contains(t, prompt, "q4")
		assert.NotContains(t, prompt, "Tell me about Upili")

		// The engine receives the rewritten question, not the raw one.
		assert.Equal(t, "standalone question", f.engine.queries[len(f.engine.queries)-1])
	})

	t.Run("engine failure persists nothing", func(t *testing.T) {
		f := newChatFixture(t)

		resp, err := f.svc.HandleTurn(ctx, 1, "seed the conversation", nil)
		require.NoError(t, err)

		f.engine.err = apperr.Engine("engine unreachable", context.DeadlineExceeded)
		_, err = f.svc.HandleTurn(ctx, 1, "this one fails", &resp.ConversationID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindEngine))

		var turnErr *TurnError
		require.ErrorAs(t, err, &turnErr)
		assert.Equal(t, resp.ConversationID, turnErr.ConversationID)

		msgs, err := f.conversations.Messages(ctx, resp.ConversationID)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, "seed the conversation", msgs[0].UserMessage)
	})

	t.Run("conversation of another user is not found", func(t *testing.T) {
		f := newChatFixture(t)

		resp, err := f.svc.HandleTurn(ctx, 1, "mine", nil)
		require.NoError(t, err)

		_, err = f.svc.HandleTurn(ctx, 2, "not yours", &resp.ConversationID)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.KindNotFound))
	})
}

func TestConcurrentConversationsDoNotInterleave(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	const turnsEach = 3
	users := []uint{1, 2}
	convIDs := make([]uint, len(users))
	for i, userID := range users {
		resp, err := f.svc.HandleTurn(ctx, userID, fmt.Sprintf("user %d opening", userID), nil)
		require.NoError(t, err)
		convIDs[i] = resp.ConversationID
	}

	var wg sync.WaitGroup
	for i, userID := range users {
		wg.Add(1)
		go func(userID, convID uint) {
			defer wg.Done()
			for n := 0; n < turnsEach; n++ {
				_, err := f.svc.HandleTurn(ctx, userID,
					fmt.Sprintf("user %d turn %d", userID, n), &convID)
				assert.NoError(t, err)
			}
		}(userID, convIDs[i])
	}
	wg.Wait()

	for i, userID := range users {
		msgs, err := f.conversations.Messages(ctx, convIDs[i])
		require.NoError(t, err)
		require.Len(t, msgs, 1+turnsEach)
		for _, msg := range msgs {
			assert.Equal(t, convIDs[i], msg.ConversationID)
			assert.Contains(t, msg.UserMessage, fmt.Sprintf("user %d", userID))
		}
	}
}

func TestMessagesOwnership(t *testing.T) {
	ctx := context.Background()
	f := newChatFixture(t)

	resp, err := f.svc.HandleTurn(ctx, 7, "hello", nil)
	require.NoError(t, err)

	msgs, err := f.svc.Messages(ctx, 7, resp.ConversationID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)

	_, err = f.svc.Messages(ctx, 8, resp.ConversationID)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}
