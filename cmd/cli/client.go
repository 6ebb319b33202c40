package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	httpserver "github.com/and161185/todo-keeper/internal/server/http"
)

// apiError is a failed API call as reported by the server.
type apiError struct {
	Status int
	Body   httpserver.ErrorBody
}

func (e *apiError) Error() string {
	return fmt.Sprintf("%s (%d): %s", e.Body.Error, e.Status, e.Body.Message)
}

type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string) *apiClient {
	return &apiClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *apiClient) register(ctx context.Context, username, password string) (httpserver.SessionResponse, error) {
	var out httpserver.SessionResponse
	err := c.postForm(ctx, "/api/register", username, password, &out)
	return out, err
}

func (c *apiClient) login(ctx context.Context, username, password string) (httpserver.SessionResponse, error) {
	var out httpserver.SessionResponse
	err := c.postForm(ctx, "/api/login", username, password, &out)
	return out, err
}

func (c *apiClient) logout(ctx context.Context, tok string) (httpserver.MessageResponse, error) {
	var out httpserver.MessageResponse
	err := c.do(ctx, http.MethodPost, "/api/logout", tok, nil, "", &out)
	return out, err
}

func (c *apiClient) list(ctx context.Context, tok string) ([]string, error) {
	var out httpserver.TodoResponse
	err := c.do(ctx, http.MethodGet, "/api/todo/", tok, nil, "", &out)
	return out.List, err
}

func (c *apiClient) add(ctx context.Context, tok, task string) ([]string, error) {
	body, err := json.Marshal(map[string]string{"task": task})
	if err != nil {
		return nil, err
	}
	var out httpserver.TodoResponse
	err = c.do(ctx, http.MethodPost, "/api/todo/add", tok, bytes.NewReader(body), "application/json", &out)
	return out.List, err
}

func (c *apiClient) postForm(ctx context.Context, path, username, password string, out any) error {
	form := url.Values{"username": {username}, "password": {password}}
	return c.do(ctx, http.MethodPost, path, "", strings.NewReader(form.Encode()),
		"application/x-www-form-urlencoded", out)
}

func (c *apiClient) do(ctx context.Context, method, path, tok string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if tok != "" {
		req.AddCookie(&http.Cookie{Name: httpserver.SessionCookie, Value: tok})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		e := &apiError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(&e.Body); err != nil {
			return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
		}
		return e
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
