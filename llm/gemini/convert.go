package gemini

import (
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
	"google.golang.org/genai"
)

// ErrProhibitedContent is returned when Gemini blocks the response.
var ErrProhibitedContent = errors.New("prohibited content")

func convertInputs(input ...scenic.Input) ([]*genai.Part, error) {
	parts := make([]*genai.Part, 0, len(input))

	for _, in := range input {
		switch v := in.(type) {
		case scenic.Text:
			parts = append(parts, &genai.Part{Text: string(v)})
		case scenic.Image:
			// Gemini does not accept GIF
			if v.MimeType() == string(scenic.ImageMimeTypeGIF) {
				return nil, goerr.New("GIF format is not supported by Gemini", goerr.V("mime_type", v.MimeType()))
			}
			parts = append(parts, &genai.Part{
				InlineData: &genai.Blob{
					MIMEType: v.MimeType(),
					Data:     v.Data(),
				},
			})
		default:
			return nil, goerr.New("unsupported input", goerr.V("type", fmt.Sprintf("%T", in)))
		}
	}
	return parts, nil
}

func processResponse(resp *genai.GenerateContentResponse) (*scenic.Response, error) {
	response := &scenic.Response{}
	if resp == nil {
		return response, nil
	}

	if resp.UsageMetadata != nil {
		response.InputToken = int(resp.UsageMetadata.PromptTokenCount)
		response.OutputToken = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	for i, candidate := range resp.Candidates {
		if strings.Contains(string(candidate.FinishReason), "PROHIBITED_CONTENT") {
			return nil, goerr.Wrap(ErrProhibitedContent, "response blocked", goerr.V("candidate", i))
		}
		if candidate.Content == nil {
			continue
		}

		for _, part := range candidate.Content.Parts {
			if part.Thought {
				continue
			}
			if part.Text != "" {
				response.Texts = append(response.Texts, part.Text)
			}
			if part.FunctionCall != nil {
				response.FunctionCalls = append(response.FunctionCalls, &scenic.FunctionCall{
					ID:        part.FunctionCall.ID,
					Name:      part.FunctionCall.Name,
					Arguments: part.FunctionCall.Args,
				})
			}
		}
	}

	return response, nil
}

func logParts(parts []*genai.Part) []map[string]any {
	var messages []map[string]any
	for _, part := range parts {
		switch {
		case part.Text != "":
			messages = append(messages, map[string]any{"type": "text", "content": part.Text})
		case part.InlineData != nil:
			messages = append(messages, map[string]any{
				"type":      "image",
				"mime_type": part.InlineData.MIMEType,
				"size":      len(part.InlineData.Data),
			})
		}
	}
	return messages
}
