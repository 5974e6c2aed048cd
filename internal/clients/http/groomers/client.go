// Package groomers is the client for the groomer service.
package groomers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tropicbliss/ESD-Project/internal/clients/http/downstream"
	accountsdomain "github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
	"github.com/tropicbliss/ESD-Project/internal/shared/grooming"
)

const (
	service = "groomer"

	msgNotAccepted = "pet type not accepted"
	msgNotFound    = "groomer not found"
)

// Client calls the groomer service.
type Client struct {
	http *downstream.Client
}

// NewClient builds a groomer client on the shared pool.
func NewClient(baseURL string, pool *httpclient.Pool) (*Client, error) {
	c, err := downstream.New(service, baseURL, pool)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

type acceptsRequest struct {
	PetTypes []grooming.PetType `json:"petTypes"`
}

type acceptsResponse struct {
	Accepted *bool               `json:"accepted"`
	Prices   grooming.PriceQuote `json:"prices"`
}

// Accepts asks whether groomerName takes every pet type and returns its price quote.
func (c *Client) Accepts(ctx context.Context, groomerName string, petTypes []grooming.PetType) (grooming.PriceQuote, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Path:    []downstream.Segment{downstream.Lit("accepts"), downstream.Param("name", groomerName)},
		Body:    acceptsRequest{PetTypes: petTypes},
		Failure: fault.KindInternalError,
	})
	if err != nil {
		return nil, err
	}
	switch {
	case resp.Status == http.StatusNotFound:
		return nil, fault.NotFound(messageOr(resp, msgNotFound)).WithStatus(resp.Status)
	case resp.Status == http.StatusBadRequest:
		return nil, fault.Rejected(messageOr(resp, msgNotAccepted)).WithStatus(resp.Status)
	case !resp.OK():
		return nil, resp.Failure(fault.KindInternalError)
	}
	var body acceptsResponse
	if err := resp.Decode(&body); err != nil {
		return nil, fault.Wrap(fault.KindInternalError, "decode groomer price quote", err)
	}
	if body.Accepted != nil && !*body.Accepted {
		return nil, fault.Rejected(msgNotAccepted)
	}
	if body.Prices == nil {
		body.Prices = grooming.PriceQuote{}
	}
	return body.Prices, nil
}

// Create registers a groomer and returns the service's response body unchanged.
func (c *Client) Create(ctx context.Context, groomer accountsdomain.Groomer) (json.RawMessage, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Path:    []downstream.Segment{downstream.Lit("create")},
		Body:    groomer,
		Failure: fault.KindPersistenceError,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Failure(downstream.KindForStatus(resp.Status, fault.KindPersistenceError))
	}
	if len(resp.Body) == 0 {
		return json.RawMessage("{}"), nil
	}
	return json.RawMessage(resp.Body), nil
}

// SearchByKeyword lists groomers whose name contains keyword.
func (c *Client) SearchByKeyword(ctx context.Context, keyword string) ([]accountsdomain.Groomer, error) {
	var out []accountsdomain.Groomer
	err := c.get(ctx, []downstream.Segment{downstream.Lit("search"), downstream.Lit("keyword"), downstream.Param("keyword", keyword)}, &out)
	return out, err
}

// SearchByName loads one groomer.
func (c *Client) SearchByName(ctx context.Context, name string) (*accountsdomain.Groomer, error) {
	var out accountsdomain.Groomer
	if err := c.get(ctx, []downstream.Segment{downstream.Lit("search"), downstream.Lit("name"), downstream.Param("name", name)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update applies a partial update.
func (c *Client) Update(ctx context.Context, name string, update accountsdomain.GroomerUpdate) error {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Path:    []downstream.Segment{downstream.Lit("update"), downstream.Param("name", name)},
		Body:    update,
		Failure: fault.KindPersistenceError,
	})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Failure(downstream.KindForStatus(resp.Status, fault.KindPersistenceError))
	}
	return nil
}

// Read lists groomers matching filter.
func (c *Client) Read(ctx context.Context, filter accountsdomain.GroomerFilter) ([]accountsdomain.Groomer, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Path:    []downstream.Segment{downstream.Lit("read")},
		Body:    filter,
		Failure: fault.KindInternalError,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Failure(downstream.KindForStatus(resp.Status, fault.KindInternalError))
	}
	var out []accountsdomain.Groomer
	if err := resp.Decode(&out); err != nil {
		return nil, fault.Wrap(fault.KindInternalError, "decode groomers", err)
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, path []downstream.Segment, out any) error {
	resp, err := c.http.Do(ctx, downstream.Call{Path: path, Failure: fault.KindInternalError})
	if err != nil {
		return err
	}
	if !resp.OK() {
		return resp.Failure(downstream.KindForStatus(resp.Status, fault.KindInternalError))
	}
	if err := resp.Decode(out); err != nil {
		return fault.Wrap(fault.KindInternalError, "decode groomer response", err)
	}
	return nil
}

func messageOr(resp *downstream.Response, fallback string) string {
	if len(resp.Body) == 0 {
		return fallback
	}
	return resp.Message()
}
