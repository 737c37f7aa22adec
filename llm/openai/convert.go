package openai

import (
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"github.com/sashabaranov/go-openai"
)

// convertInputs builds the parts of the single user message. Images are sent as data URLs.
func convertInputs(detail openai.ImageURLDetail, input ...scenic.Input) ([]openai.ChatMessagePart, error) {
	parts := make([]openai.ChatMessagePart, 0, len(input))

	for _, in := range input {
		switch v := in.(type) {
		case scenic.Text:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: string(v),
			})

		case scenic.Image:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    fmt.Sprintf("data:%s;base64,%s", v.MimeType(), v.Base64()),
					Detail: detail,
				},
			})

		default:
			return nil, goerr.New("unsupported input", goerr.V("type", fmt.Sprintf("%T", in)))
		}
	}

	return parts, nil
}

func processResponse(resp openai.ChatCompletionResponse) (*scenic.Response, error) {
	response := &scenic.Response{
		InputToken:  resp.Usage.PromptTokens,
		OutputToken: resp.Usage.CompletionTokens,
	}
	if len(resp.Choices) == 0 {
		return response, nil
	}

	message := resp.Choices[0].Message
	if message.Content != "" {
		response.Texts = append(response.Texts, message.Content)
	}

	for _, toolCall := range message.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal tool arguments", goerr.V("tool", toolCall.Function.Name))
		}
		response.FunctionCalls = append(response.FunctionCalls, &scenic.FunctionCall{
			ID:        toolCall.ID,
			Name:      toolCall.Function.Name,
			Arguments: args,
		})
	}

	return response, nil
}
