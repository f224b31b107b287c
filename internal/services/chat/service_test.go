package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mibolsillo/server/internal/common"
)

type fakeProvider struct {
	reply string
	err   error
	got   string
}

func (f *fakeProvider) GetChatResponse(ctx context.Context, message string) (string, error) {
	f.got = message
	return f.reply, f.err
}

func TestMockReply(t *testing.T) {
	reply := MockReply("¿cuánto gasté este mes?")

	assert.Contains(t, reply, "IA (Mock)")
	assert.Contains(t, reply, "¿cuánto gasté este mes?")
	assert.Contains(t, reply, "GEMINI_API_KEY")

	// Deterministic: same input, same output.
	assert.Equal(t, reply, MockReply("¿cuánto gasté este mes?"))
}

func TestGetChatResponseWithoutProvider(t *testing.T) {
	svc := NewService(nil, common.NewSilentLogger())

	reply, err := svc.GetChatResponse(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, MockReply("hola"), reply)
}

func TestGetChatResponseDelegatesToProvider(t *testing.T) {
	provider := &fakeProvider{reply: "Tu balance es positivo."}
	svc := NewService(provider, common.NewSilentLogger())

	reply, err := svc.GetChatResponse(context.Background(), "¿cómo voy?")
	require.NoError(t, err)
	assert.Equal(t, "Tu balance es positivo.", reply)
	assert.Equal(t, "¿cómo voy?", provider.got)
}

func TestGetChatResponseProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("upstream timeout")}
	svc := NewService(provider, common.NewSilentLogger())

	reply, err := svc.GetChatResponse(context.Background(), "hola")
	require.Error(t, err)
	assert.Empty(t, reply)
	assert.Contains(t, err.Error(), "upstream timeout")
}
