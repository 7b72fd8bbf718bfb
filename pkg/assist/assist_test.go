package assist

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefmap/shelter-cli/internal/retrieval"
)

type fakeCompleter struct {
	system string
	prompt string
	answer string
	err    error
}

func (f *fakeCompleter) Complete(_ context.Context, system, prompt string, _ int) (string, error) {
	f.system = system
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func testIndex(t *testing.T) *retrieval.Index {
	t.Helper()
	idx, err := retrieval.NewIndex(context.Background(), retrieval.HashingEmbedder{}, []retrieval.Snippet{
		{ID: "bleeding", Title: "Severe bleeding", Text: "Apply direct pressure on the wound."},
		{ID: "flood", Title: "Flood safety", Text: "Move to higher ground immediately."},
	})
	require.NoError(t, err)
	return idx
}

func TestAnswer_WithCompleter(t *testing.T) {
	completer := &fakeCompleter{answer: "Press firmly on the wound."}

	got, err := Answer(context.Background(), testIndex(t), completer, "how to stop bleeding from a wound", 2, 256)
	require.NoError(t, err)
	assert.Equal(t, "Press firmly on the wound.", got)
	assert.Contains(t, completer.prompt, "Severe bleeding")
	assert.Contains(t, completer.prompt, "Question: how to stop bleeding from a wound")
	assert.Contains(t, completer.system, "emergency-assistance")
}

func TestAnswer_NilCompleterReturnsSnippets(t *testing.T) {
	got, err := Answer(context.Background(), testIndex(t), nil, "bleeding wound pressure", 2, 256)
	require.NoError(t, err)
	assert.Contains(t, got, "Severe bleeding")
	assert.Contains(t, got, "direct pressure")
}

func TestAnswer_NoMatches(t *testing.T) {
	got, err := Answer(context.Background(), testIndex(t), nil, "zzzz qqqq", 2, 256)
	require.NoError(t, err)
	assert.Contains(t, got, "No guidance found")
}

func TestAnswer_CompleterError(t *testing.T) {
	completer := &fakeCompleter{err: eris.New("api down")}

	_, err := Answer(context.Background(), testIndex(t), completer, "bleeding wound", 2, 256)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assist: complete")
}
