package openai

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
)

// Config configures the OpenAI-backed upstream.
type Config struct {
	// APIKey is the credential used to authenticate requests.
	APIKey string
	// BaseURL optionally overrides the OpenAI endpoint.
	BaseURL string
	// Model is the model the stream is requested from.
	Model string
}

// Open starts one streaming Responses request for prompt and returns it as a
// pull-based text-delta upstream. The returned upstream is meant to be handed
// to stream.NewSource; it must not be shared between sources.
func Open(ctx context.Context, cfg Config, prompt string) (*Upstream, error) {
	if ctx == nil {
		return nil, fmt.Errorf("openai upstream: nil context")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai upstream: empty api key")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("openai upstream: empty model")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("openai upstream: empty prompt")
	}

	options := make([]option.RequestOption, 0, 2)
	options = append(options, option.WithAPIKey(cfg.APIKey))
	if cfg.BaseURL != "" {
		options = append(options, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(options...)

	items := responses.ResponseInputParam{
		responses.ResponseInputItemParamOfMessage(prompt, responses.EasyInputMessageRoleUser),
	}
	params := responses.ResponseNewParams{
		Model: model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: items,
		},
	}

	s := client.Responses.NewStreaming(ctx, params)
	if s == nil {
		return nil, fmt.Errorf("openai upstream: nil sdk stream")
	}
	return NewUpstream(s), nil
}
