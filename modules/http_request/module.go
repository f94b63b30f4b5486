package http_request

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3/client"
	"github.com/vk/gridflow/internal/ctxlog"
	"github.com/vk/gridflow/internal/dispatch"
	"github.com/vk/gridflow/internal/fields"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Module implements the dispatch.Module interface for this package.
type Module struct {
	Client *client.Client
}

// Input holds the decoded task inputs.
type Input struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
}

func decodeInput(in fields.Fields) (*Input, error) {
	out := &Input{Method: "GET"}
	targets := map[string]any{
		"url":     &out.URL,
		"method":  &out.Method,
		"headers": &out.Headers,
		"body":    &out.Body,
	}
	for name, target := range targets {
		v, ok := in[name]
		if !ok || v.IsNull() {
			continue
		}
		if err := gocty.FromCtyValue(v, target); err != nil {
			return nil, fmt.Errorf("input '%s': %w", name, err)
		}
	}
	if out.URL == "" {
		return nil, fmt.Errorf("input 'url' is required")
	}
	return out, nil
}

// OnRunHttpRequest performs the request and returns "status_code" and "body".
func (m *Module) OnRunHttpRequest(ctx context.Context, in fields.Fields) (fields.Fields, error) {
	input, err := decodeInput(in)
	if err != nil {
		return nil, err
	}
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", input.Method, "url", input.URL)

	c := m.Client
	if c == nil {
		c = client.New()
	}
	req := c.R().
		SetContext(ctx).
		SetMethod(input.Method).
		SetURL(input.URL).
		SetHeaders(input.Headers)
	if input.Body != "" {
		req.SetRawBody([]byte(input.Body))
	}

	resp, err := req.Send()
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Close()

	logger.Info("Received HTTP response", "status", resp.StatusCode())
	return fields.Fields{
		"status_code": cty.NumberIntVal(int64(resp.StatusCode())),
		"body":        cty.StringVal(string(resp.Body())),
	}, nil
}

// Register registers the handler with the local dispatcher.
func (m *Module) Register(l *dispatch.Local) {
	l.Register("http_request", m.OnRunHttpRequest)
}
