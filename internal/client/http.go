package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/calebmah/streamchat/internal/services/chat/models"
	"github.com/calebmah/streamchat/internal/stream"
)

// HTTPTransport is the one-shot streamed request variant: each
// submission is a POST whose response body carries the framed events.
type HTTPTransport struct {
	Endpoint string
	Client   *http.Client
}

func NewHTTPTransport(endpoint string, httpClient *http.Client) *HTTPTransport {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPTransport{
		Endpoint: endpoint,
		Client:   httpClient,
	}
}

// Submit posts a completion request and feeds the response body into
// apply, frame by frame. The body may split frames across arbitrary
// chunk boundaries; the decoder buffers and re-splits on the frame
// delimiter. Consumption stops at the end sentinel. An early closure
// ends consumption with whatever state was folded so far; the error is
// returned so callers can surface "usage unknown".
func (t *HTTPTransport) Submit(ctx context.Context, req models.CompletionRequest, apply func(stream.Event)) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode submission: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build submission request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("submission rejected with status %d: %s", resp.StatusCode, msg)
	}

	dec := &stream.Decoder{}
	buf := make([]byte, 4096)
	ended := false
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			for _, ev := range dec.Feed(buf[:n]) {
				if ended {
					// Nothing after the sentinel may mutate state.
					continue
				}
				apply(ev)
				if ev.Kind == stream.KindEnd {
					ended = true
				}
			}
		}
		if ended {
			return nil
		}
		if readErr == io.EOF {
			return fmt.Errorf("stream closed before end sentinel: %w", io.ErrUnexpectedEOF)
		}
		if readErr != nil {
			return fmt.Errorf("failed to read stream: %w", readErr)
		}
	}
}
