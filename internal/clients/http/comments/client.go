// Package comments is the client for the comments service.
package comments

import (
	"context"

	"github.com/tropicbliss/ESD-Project/internal/clients/http/downstream"
	bookingsdomain "github.com/tropicbliss/ESD-Project/internal/domains/bookings/domain"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

// Client calls the comments service.
type Client struct {
	http *downstream.Client
}

// NewClient builds a comments client on the shared pool.
func NewClient(baseURL string, pool *httpclient.Pool) (*Client, error) {
	c, err := downstream.New("comments", baseURL, pool)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

// ForGroomer lists the comments left for a groomer.
func (c *Client) ForGroomer(ctx context.Context, groomerName string) ([]bookingsdomain.Comment, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Path:    []downstream.Segment{downstream.Param("groomer_name", groomerName)},
		Failure: fault.KindInternalError,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Failure(downstream.KindForStatus(resp.Status, fault.KindInternalError))
	}
	var out []bookingsdomain.Comment
	if err := resp.Decode(&out); err != nil {
		return nil, fault.Wrap(fault.KindInternalError, "decode comments", err)
	}
	return out, nil
}
