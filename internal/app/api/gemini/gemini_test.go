package gemini

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type mockModels struct {
	mock.Mock
}

func (m *mockModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, model, contents, config)
	if r, ok := args.Get(0).(*genai.GenerateContentResponse); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{{Text: text}}},
		}},
	}
}

func TestCompleter_CompleteJSON(t *testing.T) {
	models := &mockModels{}
	models.On("GenerateContent", mock.Anything, "gemini-2.5-pro", mock.Anything,
		mock.MatchedBy(func(c *genai.GenerateContentConfig) bool {
			return c.ResponseMIMEType == "application/json" &&
				c.Temperature != nil && *c.Temperature == 0 &&
				c.SystemInstruction != nil && c.SystemInstruction.Parts[0].Text == "sys"
		})).Return(textResponse(`{"clinical_note":"ok"}`), nil).Once()

	c := newCompleter(models, "")
	got, err := c.CompleteJSON(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, `{"clinical_note":"ok"}`, got)
	assert.Equal(t, DefaultModel, c.Model())
	models.AssertExpectations(t)
}

func TestCompleter_Errors(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		err     error
		wantErr string
	}{
		{name: "api failure", err: errors.New("quota"), wantErr: "generate content failed"},
		{name: "empty text", resp: textResponse("  "), wantErr: "empty response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			models := &mockModels{}
			models.On("GenerateContent", mock.Anything, "m", mock.Anything, mock.Anything).Return(tt.resp, tt.err)

			_, err := newCompleter(models, "m").Complete(context.Background(), "", "user")
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestNewCompleter_RequiresKey(t *testing.T) {
	_, err := NewCompleter(context.Background(), "", "")
	assert.Error(t, err)
}
