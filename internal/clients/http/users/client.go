// Package users is the client for the GraphQL user service. Every operation sends its
// arguments as GraphQL variables; user input never becomes part of the query text.
package users

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/tropicbliss/ESD-Project/internal/clients/http/downstream"
	accountsdomain "github.com/tropicbliss/ESD-Project/internal/domains/accounts/domain"
	"github.com/tropicbliss/ESD-Project/internal/platform/httpclient"
	"github.com/tropicbliss/ESD-Project/internal/shared/fault"
)

const (
	service = "user"

	createUserMutation = `mutation CreateUser($name: String!, $contactNo: String!, $email: String!) {
  createUser(name: $name, contactNo: $contactNo, email: $email)
}`
	getUserQuery = `query GetUser($name: String!) {
  getUser(name: $name) {
    name
    contactNo
    email
  }
}`
	updateUserMutation = `mutation UpdateUser($name: String!, $contactNo: String, $email: String) {
  updateUser(name: $name, contactNo: $contactNo, email: $email)
}`
)

// Client calls the user service.
type Client struct {
	http *downstream.Client
}

// NewClient builds a user client on the shared pool.
func NewClient(baseURL string, pool *httpclient.Pool) (*Client, error) {
	c, err := downstream.New(service, baseURL, pool)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

func (r graphQLResponse) firstError() string {
	for _, e := range r.Errors {
		if msg := strings.TrimSpace(e.Message); msg != "" {
			return msg
		}
	}
	return ""
}

func (r graphQLResponse) hasData() bool {
	trimmed := strings.TrimSpace(string(r.Data))
	return trimmed != "" && trimmed != "null"
}

// Create registers a user. A GraphQL error is a Rejected failure carrying its first message.
func (c *Client) Create(ctx context.Context, user accountsdomain.User) error {
	resp, err := c.execute(ctx, "CreateUser", createUserMutation, map[string]any{
		"name":      user.Name,
		"contactNo": user.ContactNo,
		"email":     user.Email,
	}, fault.KindPersistenceError)
	if err != nil {
		return err
	}
	if msg := resp.firstError(); msg != "" {
		return fault.Rejected(msg).WithStatus(http.StatusBadRequest)
	}
	return nil
}

// Get loads a user by name.
func (c *Client) Get(ctx context.Context, name string) (*accountsdomain.User, error) {
	resp, err := c.execute(ctx, "GetUser", getUserQuery, map[string]any{"name": name}, fault.KindInternalError)
	if err != nil {
		return nil, err
	}
	var data struct {
		GetUser *accountsdomain.User `json:"getUser"`
	}
	if resp.hasData() {
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			return nil, fault.Wrap(fault.KindInternalError, "decode user", err)
		}
	}
	if data.GetUser == nil {
		if msg := resp.firstError(); msg != "" && !resp.hasData() {
			return nil, fault.Internal(msg)
		}
		return nil, fault.NotFound("user not found")
	}
	return data.GetUser, nil
}

// Update changes a user's contact details. A response without data is NotFound with the
// service's first error message.
func (c *Client) Update(ctx context.Context, name string, update accountsdomain.UserUpdate) error {
	vars := map[string]any{"name": name, "contactNo": nil, "email": nil}
	if update.ContactNo != nil {
		vars["contactNo"] = *update.ContactNo
	}
	if update.Email != nil {
		vars["email"] = *update.Email
	}
	resp, err := c.execute(ctx, "UpdateUser", updateUserMutation, vars, fault.KindPersistenceError)
	if err != nil {
		return err
	}
	if !resp.hasData() {
		msg := resp.firstError()
		if msg == "" {
			msg = "user not found"
		}
		return fault.NotFound(msg)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, operation, query string, vars map[string]any, failure fault.Kind) (*graphQLResponse, error) {
	resp, err := c.http.Do(ctx, downstream.Call{
		Method:  http.MethodPost,
		Body:    graphQLRequest{Query: query, OperationName: operation, Variables: vars},
		Failure: failure,
	})
	if err != nil {
		return nil, err
	}
	var body graphQLResponse
	if decodeErr := resp.Decode(&body); decodeErr != nil {
		if !resp.OK() {
			return nil, resp.Failure(downstream.KindForStatus(resp.Status, failure))
		}
		return nil, fault.Wrap(fault.KindInternalError, "decode user service response", decodeErr)
	}
	if !resp.OK() && len(body.Errors) == 0 {
		return nil, resp.Failure(downstream.KindForStatus(resp.Status, failure))
	}
	return &body, nil
}
