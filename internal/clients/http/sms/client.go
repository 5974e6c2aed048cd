// Package sms sends text messages through the SMS gateway service.
package sms

import (
	"context"
	"net/http"

	"github.com/tropicbliss/ESD-Project/internal/clients/http/downstream"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

// Client calls the SMS gateway.
type Client struct {
	http *downstream.Client
}

// NewClient builds a gateway client on the shared pool.
func NewClient(baseURL string, pool *httpclient.Pool) (*Client, error) {
	c, err := downstream.New("sms", baseURL, pool)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

type message struct {
	To   string `json:"to"`
	Body string `json:"body"`
}

// Send delivers body to the phone number to.
func (c *Client) Send(ctx context.Context, to, body string) error {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Path:    []downstream.Segment{downstream.Lit("messages")},
		Body:    message{To: to, Body: body},
		Failure: fault.KindInternalError,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Failure(downstream.KindForStatus(resp.Status, fault.KindInternalError))
	}
	return nil
}
