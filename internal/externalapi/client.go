// Package externalapi implements the CallExternal/CallService collaborator
// contracts: a generic, URL-templated HTTP client for CallExternal, and an
// in-memory deterministic adapter for CallService.
package externalapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corintai/corint/internal/value"
	"github.com/corintai/corint/internal/vm"
	"github.com/corintai/corint/pkg/corinterr"
)

// HTTPMethod enumerates the methods EndpointConfig supports.
type HTTPMethod string

const (
	MethodGet  HTTPMethod = "GET"
	MethodPost HTTPMethod = "POST"
)

// EndpointConfig describes one named operation against an API: its method,
// a path template with `{placeholder}` segments, and the mapping from
// placeholder/query names to CallExternal parameter names.
type EndpointConfig struct {
	Method      HTTPMethod
	Path        string
	PathParams  map[string]string // placeholder -> param name
	QueryParams map[string]string // query key -> param name
}

// APIConfig is one registered external API: a base URL plus its named
// endpoints.
type APIConfig struct {
	Name     string
	BaseURL  string
	Endpoints map[string]EndpointConfig
}

// Client implements vm.ExternalCaller against a registry of APIConfig,
// templating the endpoint's path/query from CallExternal's params the same
// way the original runtime's external_api.rs does, over net/http instead of
// a Rust HTTP crate.
type Client struct {
	configs    map[string]APIConfig
	httpClient *http.Client
}

var _ vm.ExternalCaller = (*Client)(nil)

// NewClient returns a Client with a 10-second default timeout, matching the
// original runtime's default client configuration.
func NewClient() *Client {
	return &Client{
		configs:    make(map[string]APIConfig),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// RegisterAPI adds or replaces cfg's entry.
func (c *Client) RegisterAPI(cfg APIConfig) {
	c.configs[cfg.Name] = cfg
}

// CallExternal implements vm.ExternalCaller.
func (c *Client) CallExternal(ctx context.Context, req vm.ExternalRequest) (value.Value, error) {
	api, ok := c.configs[req.API]
	if !ok {
		return nil, corinterr.NewExternalCallFailed(req.API, fmt.Errorf("unknown API: %s", req.API))
	}
	endpoint, ok := api.Endpoints[req.Endpoint]
	if !ok {
		return nil, corinterr.NewExternalCallFailed(req.API, fmt.Errorf("unknown endpoint: %s::%s", req.API, req.Endpoint))
	}

	rawURL, err := buildURL(api, endpoint, req.Params)
	if err != nil {
		return nil, corinterr.NewExternalCallFailed(req.API, err)
	}

	client := c.httpClient
	if req.TimeoutMS > 0 {
		client = &http.Client{Timeout: time.Duration(req.TimeoutMS) * time.Millisecond}
	}

	method := string(endpoint.Method)
	if method == "" {
		method = string(MethodGet)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, corinterr.NewExternalCallFailed(req.API, err)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, corinterr.NewExternalCallFailed(req.API, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, corinterr.NewExternalCallFailed(req.API, fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, corinterr.NewExternalCallFailed(req.API, err)
	}
	if len(body) == 0 {
		return value.Null{}, nil
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, corinterr.NewExternalCallFailed(req.API, fmt.Errorf("failed to parse JSON: %w", err))
	}
	return value.FromNative(decoded), nil
}

// buildURL templates endpoint.Path's `{placeholder}` segments and appends
// a URL-encoded query string, mirroring external_api.rs's build_url.
func buildURL(api APIConfig, endpoint EndpointConfig, params map[string]value.Value) (string, error) {
	path := endpoint.Path
	for placeholder, paramName := range endpoint.PathParams {
		v, err := paramValue(paramName, params)
		if err != nil {
			return "", err
		}
		s, err := valueToString(v)
		if err != nil {
			return "", err
		}
		path = strings.ReplaceAll(path, "{"+placeholder+"}", s)
	}

	query := url.Values{}
	for queryKey, paramName := range endpoint.QueryParams {
		v, err := paramValue(paramName, params)
		if err != nil {
			return "", err
		}
		s, err := valueToString(v)
		if err != nil {
			return "", err
		}
		query.Set(queryKey, s)
	}

	full := api.BaseURL + path
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full, nil
}

func paramValue(name string, params map[string]value.Value) (value.Value, error) {
	if v, ok := params[name]; ok {
		return v, nil
	}
	return value.Null{}, nil
}

func valueToString(v value.Value) (string, error) {
	switch t := v.(type) {
	case value.String:
		return string(t), nil
	case value.Number:
		return strconv.FormatFloat(float64(t), 'g', -1, 64), nil
	case value.Bool:
		return strconv.FormatBool(bool(t)), nil
	case value.Null:
		return "", nil
	default:
		return "", fmt.Errorf("cannot convert complex value to string for URL parameter")
	}
}
