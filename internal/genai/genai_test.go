package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// The real completion service must keep satisfying the seam the client is
// built on; New has a pointer receiver.
var _ chatService = (*openai.ChatCompletionService)(nil)

// mockChatService records the last request and returns a scripted response.
type mockChatService struct {
	lastParams openai.ChatCompletionNewParams
	response   *openai.ChatCompletion
	err        error
}

func (m *mockChatService) New(ctx context.Context, params openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	m.lastParams = params
	return m.response, m.err
}

func completionWith(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func TestGeneratePrompt(t *testing.T) {
	mock := &mockChatService{response: completionWith("Antalya is lovely in May.")}
	client := &Client{chat: mock, model: openai.ChatModelGPT4oMini}

	got, err := client.GeneratePrompt(context.Background(), "You are a travel assistant.", "Where should I go?")
	if err != nil {
		t.Fatalf("GeneratePrompt failed: %v", err)
	}
	if got != "Antalya is lovely in May." {
		t.Errorf("unexpected response: %q", got)
	}
	if len(mock.lastParams.Messages) != 2 {
		t.Errorf("expected system + user messages, got %d", len(mock.lastParams.Messages))
	}
	if mock.lastParams.Model != openai.ChatModelGPT4oMini {
		t.Errorf("unexpected model: %v", mock.lastParams.Model)
	}
}

func TestGenerateWithMessages_CompletionError(t *testing.T) {
	mock := &mockChatService{err: errors.New("rate limited")}
	client := &Client{chat: mock, model: openai.ChatModelGPT4oMini}

	_, err := client.GenerateWithMessages(context.Background(), []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage("hi"),
	})
	if err == nil {
		t.Fatal("expected error from failed completion")
	}
}

func TestGenerateWithMessages_NoChoices(t *testing.T) {
	mock := &mockChatService{response: &openai.ChatCompletion{}}
	client := &Client{chat: mock, model: openai.ChatModelGPT4oMini}

	_, err := client.GenerateWithMessages(context.Background(), []openai.ChatCompletionMessageParamUnion{
		openai.UserMessage("hi"),
	})
	if err == nil {
		t.Fatal("expected error when the completion has no choices")
	}
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error when no API key is configured")
	}
}

func TestNewClient_DefaultsModel(t *testing.T) {
	client, err := NewClient(WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if client.model != openai.ChatModelGPT4oMini {
		t.Errorf("expected default model, got %v", client.model)
	}
}
