// Package client talks to the chat-room HTTP API on behalf of one participant.
package client

import (
	"bytes"
	"chat-room/infrastructure/http/server"
	"chat-room/validation"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// APIError is a non-2xx answer of the server.
type APIError struct {
	StatusCode int
	Body       server.ErrorResponse
}

func (e *APIError) Error() string {
	if len(e.Body.Details) > 0 {
		return fmt.Sprintf("%d %s: %v", e.StatusCode, e.Body.Message, e.Body.Details)
	}
	return fmt.Sprintf("%d %s", e.StatusCode, e.Body.Message)
}

type Client struct {
	http *http.Client
	user string
}

// New returns a client sending requests to baseURL as user.
func New(baseURL, user string, timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Transport: &Transport{BaseURL: baseURL, User: user},
			Timeout:   timeout,
		},
		user: user,
	}
}

func (c *Client) User() string {
	return c.user
}

func (c *Client) Join(ctx context.Context) (server.ParticipantResponse, error) {
	var participant server.ParticipantResponse
	err := c.do(ctx, http.MethodPost, "/participants", validation.ParticipantRequest{Name: c.user}, &participant)
	return participant, err
}

func (c *Client) Participants(ctx context.Context) ([]server.ParticipantResponse, error) {
	var participants []server.ParticipantResponse
	err := c.do(ctx, http.MethodGet, "/participants", nil, &participants)
	return participants, err
}

func (c *Client) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/status", nil, nil)
}

func (c *Client) Send(ctx context.Context, req validation.MessageRequest) (server.MessageResponse, error) {
	var message server.MessageResponse
	err := c.do(ctx, http.MethodPost, "/messages", req, &message)
	return message, err
}

// Messages fetches the messages visible to the user. limit <= 0 fetches all of them.
func (c *Client) Messages(ctx context.Context, limit int) ([]server.MessageResponse, error) {
	path := "/messages"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var messages []server.MessageResponse
	err := c.do(ctx, http.MethodGet, path, nil, &messages)
	return messages, err
}

func (c *Client) Update(ctx context.Context, id string, req validation.MessageRequest) (server.MessageResponse, error) {
	var message server.MessageResponse
	err := c.do(ctx, http.MethodPut, "/messages/"+url.PathEscape(id), req, &message)
	return message, err
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/messages/"+url.PathEscape(id), nil, nil)
}

func (c *Client) Health(ctx context.Context) (server.HealthResponse, error) {
	var health server.HealthResponse
	err := c.do(ctx, http.MethodGet, "/health", nil, &health)
	return health, err
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("json marshal error: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request error: %w", err)
	}
	defer func() {
		_ = res.Body.Close()
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: res.StatusCode}
		_ = json.NewDecoder(res.Body).Decode(&apiErr.Body)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err = json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("json decode error: %w", err)
	}
	return nil
}
