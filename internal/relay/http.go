package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"blindrelay/internal/domain"
	"blindrelay/internal/protocol/wire"
)

// HTTP is a domain.RelayClient speaking to a relay over HTTP.
type HTTP struct {
	Base     string
	ClientID domain.ClientID
	HTTP     *http.Client
}

// NewHTTP returns a client for the relay at base acting as client.
func NewHTTP(base string, client domain.ClientID) *HTTP {
	return &HTTP{Base: base, ClientID: client, HTTP: http.DefaultClient}
}

// SubmitInvitation posts an outer envelope.
func (c *HTTP) SubmitInvitation(ctx context.Context, env domain.Envelope) error {
	_, err := c.do(ctx, http.MethodPost, "/v1/invitations", wire.MarshalEnvelope(env))
	return err
}

// FetchInvitation takes the envelope for id, consuming it at the relay.
func (c *HTTP) FetchInvitation(ctx context.Context, id domain.InvitationID) (domain.Envelope, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/invitations/"+id.String(), nil)
	if err != nil {
		return domain.Envelope{}, err
	}
	return wire.ParseEnvelope(body)
}

func (c *HTTP) do(ctx context.Context, method, path string, in []byte) ([]byte, error) {
	var body io.Reader
	if in != nil {
		body = bytes.NewReader(in)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.Base+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(HeaderClientID, c.ClientID.String())
	if in != nil {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize+1))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		if sentinel := errorFor(resp.StatusCode, string(out)); sentinel != nil {
			return nil, sentinel
		}
		return nil, fmt.Errorf("relay %s %s: %s", method, path, resp.Status)
	}
	return out, nil
}

var _ domain.RelayClient = (*HTTP)(nil)
