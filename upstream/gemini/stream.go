package gemini

import (
	"context"
	"fmt"
	"io"
	"iter"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/BaSui01/streamcache/stream"
)

// Config configures the Gemini-backed upstream.
type Config struct {
	// APIKey is the credential used to authenticate requests.
	APIKey string
	// Model is the model the stream is requested from.
	Model string
	// IncludeThoughts also surfaces thought-summary parts as deltas.
	IncludeThoughts bool
}

// Upstream adapts a Gemini streaming response into the text-delta pull
// interface consumed by stream.Source. A clean completion surfaces as io.EOF.
type Upstream struct {
	mu sync.Mutex

	next func() (*genai.GenerateContentResponse, error, bool)
	stop func()

	closed          bool
	finished        bool
	includeThoughts bool
	pending         []string
}

// Open starts one streaming generate request for prompt.
func Open(ctx context.Context, cfg Config, prompt string) (*Upstream, error) {
	if ctx == nil {
		return nil, fmt.Errorf("gemini upstream: nil context")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini upstream: empty api key")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		return nil, fmt.Errorf("gemini upstream: empty model")
	}
	if strings.TrimSpace(prompt) == "" {
		return nil, fmt.Errorf("gemini upstream: empty prompt")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini upstream client: %w", err)
	}
	if client == nil || client.Models == nil {
		return nil, fmt.Errorf("gemini upstream: models client is nil")
	}

	seq := client.Models.GenerateContentStream(ctx, model, genai.Text(prompt), nil)
	if seq == nil {
		return nil, fmt.Errorf("gemini upstream: nil sdk stream")
	}
	return NewUpstream(seq, cfg.IncludeThoughts), nil
}

// NewUpstream wraps an already-open response sequence.
func NewUpstream(
	seq iter.Seq2[*genai.GenerateContentResponse, error],
	includeThoughts bool,
) *Upstream {
	next, stop := iter.Pull2(seq)
	return &Upstream{
		next:            next,
		stop:            stop,
		includeThoughts: includeThoughts,
	}
}

// Recv returns the next non-empty text delta from the response stream.
func (u *Upstream) Recv(ctx context.Context) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("gemini upstream recv: nil context")
	}

	for {
		if err := ctx.Err(); err != nil {
			_ = u.Close()
			return "", fmt.Errorf("gemini upstream recv context: %w", err)
		}
		if delta, ok := u.dequeuePending(); ok {
			return delta, nil
		}

		response, err := u.nextResponse()
		if err != nil {
			return "", err
		}

		deltas := mapResponse(response, u.includeThoughts)
		if len(deltas) == 0 {
			continue
		}
		if len(deltas) > 1 {
			u.enqueuePending(deltas[1:])
		}
		return deltas[0], nil
	}
}

// Close releases the underlying SDK stream. Safe to call more than once.
func (u *Upstream) Close() error {
	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	u.closed = true
	u.finished = true
	stop := u.stop
	u.stop = nil
	u.next = nil
	u.mu.Unlock()

	if stop != nil {
		stop()
	}
	return nil
}

func (u *Upstream) nextResponse() (*genai.GenerateContentResponse, error) {
	u.mu.Lock()
	if u.closed || u.finished {
		u.mu.Unlock()
		return nil, io.EOF
	}
	next := u.next
	if next == nil {
		u.finished = true
		u.mu.Unlock()
		return nil, io.EOF
	}
	u.mu.Unlock()

	response, recvErr, ok := next()
	if !ok {
		u.markFinished()
		return nil, io.EOF
	}
	if recvErr != nil {
		u.markFinished()
		return nil, fmt.Errorf("gemini upstream next: %w", recvErr)
	}
	return response, nil
}

func (u *Upstream) markFinished() {
	u.mu.Lock()
	u.finished = true
	u.mu.Unlock()
}

func (u *Upstream) dequeuePending() (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if len(u.pending) == 0 {
		return "", false
	}
	delta := u.pending[0]
	u.pending = u.pending[1:]
	return delta, true
}

func (u *Upstream) enqueuePending(deltas []string) {
	u.mu.Lock()
	u.pending = append(u.pending, deltas...)
	u.mu.Unlock()
}

// mapResponse extracts the non-empty text deltas of one streamed response.
func mapResponse(response *genai.GenerateContentResponse, includeThoughts bool) []string {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0] == nil {
		return nil
	}
	content := response.Candidates[0].Content
	if content == nil {
		return nil
	}

	deltas := make([]string, 0, len(content.Parts))
	for _, part := range content.Parts {
		if part == nil || part.Text == "" {
			continue
		}
		if part.Thought && !includeThoughts {
			continue
		}
		deltas = append(deltas, part.Text)
	}
	return deltas
}

var _ stream.Upstream[string] = (*Upstream)(nil)
