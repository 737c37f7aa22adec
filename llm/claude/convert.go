package claude

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/scenic"
)

func convertInputs(input ...scenic.Input) ([]anthropic.ContentBlockParamUnion, error) {
	blocks := make([]anthropic.ContentBlockParamUnion, 0, len(input))

	for _, in := range input {
		switch v := in.(type) {
		case scenic.Text:
			blocks = append(blocks, anthropic.NewTextBlock(string(v)))
		case scenic.Image:
			blocks = append(blocks, anthropic.NewImageBlockBase64(v.MimeType(), v.Base64()))
		default:
			return nil, goerr.New("unsupported input", goerr.V("type", fmt.Sprintf("%T", in)))
		}
	}

	return blocks, nil
}

func processResponse(resp *anthropic.Message) (*scenic.Response, error) {
	response := &scenic.Response{}
	if resp == nil {
		return response, nil
	}

	response.InputToken = int(resp.Usage.InputTokens)
	response.OutputToken = int(resp.Usage.OutputTokens)

	for _, content := range resp.Content {
		switch content.Type {
		case "text":
			if content.Text != "" {
				response.Texts = append(response.Texts, content.Text)
			}
		case "tool_use":
			var args map[string]any
			if len(content.Input) > 0 {
				if err := json.Unmarshal(content.Input, &args); err != nil {
					return nil, goerr.Wrap(err, "failed to unmarshal tool input", goerr.V("tool", content.Name))
				}
			}
			response.FunctionCalls = append(response.FunctionCalls, &scenic.FunctionCall{
				ID:        content.ID,
				Name:      content.Name,
				Arguments: args,
			})
		}
	}

	return response, nil
}

func logInputs(input []scenic.Input) []map[string]any {
	out := make([]map[string]any, 0, len(input))
	for _, in := range input {
		switch v := in.(type) {
		case scenic.Text:
			out = append(out, map[string]any{"type": "text", "content": string(v)})
		case scenic.Image:
			out = append(out, map[string]any{"type": "image", "mime_type": v.MimeType(), "size": len(v.Data())})
		}
	}
	return out
}
