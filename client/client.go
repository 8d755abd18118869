// Package client is a typed HTTP client for the lingoflow API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lingoflow/internal/dto/resp"
	v1 "lingoflow/pkg/api/v1"
	"lingoflow/pkg/logger"

	"go.uber.org/zap"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("lingoflow: %d %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Download is an exported file as served by the export endpoints.
type Download struct {
	Name    string
	Content []byte
}

type LingoClient struct {
	addr       string
	httpClient *http.Client
}

func NewLingoClient(addr string, timeout time.Duration) *LingoClient {
	return &LingoClient{
		addr:       strings.TrimRight(addr, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *LingoClient) List(ctx context.Context, query, version string) ([]v1.Feature, error) {
	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	if version != "" {
		params.Set("version", version)
	}
	var out resp.FeatureListResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/features", params, nil, &out); err != nil {
		return nil, err
	}
	return out.Features, nil
}

func (c *LingoClient) Get(ctx context.Context, id string) (*v1.Feature, error) {
	var out resp.FeatureResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/features/"+url.PathEscape(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Feature, nil
}

func (c *LingoClient) Create(ctx context.Context, in v1.CreateFeatureInput) (*v1.Feature, error) {
	var out resp.FeatureResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/features", nil, in, &out); err != nil {
		return nil, err
	}
	return out.Feature, nil
}

func (c *LingoClient) Update(ctx context.Context, id string, in v1.UpdateFeatureInput) (*v1.Feature, error) {
	var out resp.FeatureResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/features/"+url.PathEscape(id), nil, in, &out); err != nil {
		return nil, err
	}
	return out.Feature, nil
}

func (c *LingoClient) Delete(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/features/"+url.PathEscape(id), nil, nil, nil)
}

func (c *LingoClient) Progress(ctx context.Context, id string) (*resp.ProgressResponse, error) {
	var out resp.ProgressResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/features/"+url.PathEscape(id)+"/progress", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *LingoClient) Versions(ctx context.Context) ([]string, error) {
	var out resp.VersionsResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/versions", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Versions, nil
}

func (c *LingoClient) Export(ctx context.Context, id, format string) (*Download, error) {
	return c.download(ctx, "/api/features/"+url.PathEscape(id)+"/export", format)
}

func (c *LingoClient) ExportField(ctx context.Context, id, fieldID, format string) (*Download, error) {
	return c.download(ctx, "/api/features/"+url.PathEscape(id)+"/fields/"+url.PathEscape(fieldID)+"/export", format)
}

func (c *LingoClient) download(ctx context.Context, path, format string) (*Download, error) {
	res, err := c.do(ctx, http.MethodGet, path, url.Values{"format": {format}}, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	content, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read export body: %w", err)
	}
	d := &Download{Content: content}
	if _, params, err := mime.ParseMediaType(res.Header.Get("Content-Disposition")); err == nil {
		d.Name = params["filename"]
	}
	return d, nil
}

func (c *LingoClient) doJSON(ctx context.Context, method, path string, params url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}
	res, err := c.do(ctx, method, path, params, body)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		logger.Error("failed to decode response", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// do sends the request and turns any non-2xx status into an *APIError.
func (c *LingoClient) do(ctx context.Context, method, path string, params url.Values, body io.Reader) (*http.Response, error) {
	u := c.addr + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return res, nil
	}
	defer res.Body.Close()

	var e resp.ErrorResponse
	if err := json.NewDecoder(res.Body).Decode(&e); err != nil || e.Error == "" {
		e.Error = http.StatusText(res.StatusCode)
	}
	return nil, &APIError{StatusCode: res.StatusCode, Message: e.Error}
}
