package pterodactyl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jimyag/panelbot/pkg/apierror"
)

const (
	apiPrefix      = "/api/application"
	defaultPerPage = 100
	defaultTimeout = 15 * time.Second
	// maxPages 防止面板返回错误的分页信息导致死循环
	maxPages = 1000
)

// Config 面板客户端配置
type Config struct {
	BaseURL    string        // 面板地址，例如 https://panel.example.com（必填）
	APIKey     string        // Application API Key（必填）
	Timeout    time.Duration // 单个请求超时时间（默认：15s）
	PerPage    int           // 列表接口每页数量（默认：100）
	HTTPClient *http.Client  // 自定义 HTTP 客户端（可选，测试时使用）
}

// Client 面板 Application API 客户端
type Client struct {
	baseURL string
	apiKey  string
	perPage int
	http    *http.Client
}

var _ PanelClient = (*Client)(nil)

// New 创建面板客户端
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("pterodactyl: config is nil")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errors.New("pterodactyl: base url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("pterodactyl: invalid base url %q: %w", baseURL, err)
	}
	if cfg.APIKey == "" {
		return nil, errors.New("pterodactyl: api key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
		perPage: perPage,
		http:    httpClient,
	}, nil
}

// BaseURL 面板地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do 发送请求，2xx 时把响应体解码到 out（out 为 nil 时忽略响应体）
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	logger := zerolog.Ctx(ctx)

	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return apierror.WrapError(apierror.ErrInternalError, "failed to encode panel request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "failed to build panel request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("Panel request failed")
		return transportError(fmt.Sprintf("panel request %s %s failed", method, path), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(fmt.Sprintf("failed to read panel response %s %s", method, path), err)
	}

	logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Panel request finished")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		re := &ResponseError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(respBody),
		}
		var payload struct {
			Errors []ErrorDetail `json:"errors"`
		}
		if json.Unmarshal(respBody, &payload) == nil {
			re.Details = payload.Errors
		}
		logger.Warn().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Str("detail", re.Message()).
			Msg("Panel returned error")
		return transportError(fmt.Sprintf("panel returned status %d", resp.StatusCode), re)
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return transportError(fmt.Sprintf("failed to decode panel response %s %s", method, path), err)
	}
	return nil
}

// listAll 遍历所有分页
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(c.perPage))

	var out []T
	for page := 1; page <= maxPages; page++ {
		query.Set("page", strconv.Itoa(page))
		var resp list[T]
		if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
			return nil, err
		}
		for _, d := range resp.Data {
			out = append(out, d.Attributes)
		}
		p := resp.Meta.Pagination
		if p.TotalPages <= page || len(resp.Data) == 0 {
			break
		}
	}
	return out, nil
}

func getOne[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var resp item[T]
	if err := c.do(ctx, http.MethodGet, path, query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Attributes, nil
}

// ==================== 用户 ====================

// FindUserByEmail 按邮箱查找用户，不存在时返回 nil, nil
// 面板的 filter[email] 是模糊匹配，这里再做一次大小写不敏感的精确比较
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	query := url.Values{}
	query.Set("filter[email]", email)
	users, err := listAll[User](ctx, c, "/users", query)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// GetUser 获取用户
func (c *Client) GetUser(ctx context.Context, userID int) (*User, error) {
	return getOne[User](ctx, c, fmt.Sprintf("/users/%d", userID), nil)
}

// CreateUser 创建用户
func (c *Client) CreateUser(ctx context.Context, req *CreateUserRequest) (*User, error) {
	var resp item[User]
	if err := c.do(ctx, http.MethodPost, "/users", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Attributes, nil
}

// UpdateUser 更新用户
func (c *Client) UpdateUser(ctx context.Context, userID int, req *UpdateUserRequest) (*User, error) {
	var resp item[User]
	if err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/users/%d", userID), nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp.Attributes, nil
}

// ==================== 服务器 ====================

// ListServers 列出所有服务器，包含 allocations 关联数据
func (c *Client) ListServers(ctx context.Context) ([]Server, error) {
	query := url.Values{}
	query.Set("include", "allocations")
	return listAll[Server](ctx, c, "/servers", query)
}

// ListServersByOwner 列出属于某个面板用户的服务器
func (c *Client) ListServersByOwner(ctx context.Context, userID int) ([]Server, error) {
	servers, err := c.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	owned := make([]Server, 0, len(servers))
	for _, s := range servers {
		if s.User == userID {
			owned = append(owned, s)
		}
	}
	return owned, nil
}

// GetServer 获取服务器，包含 allocations 关联数据
func (c *Client) GetServer(ctx context.Context, serverID int) (*Server, error) {
	query := url.Values{}
	query.Set("include", "allocations")
	return getOne[Server](ctx, c, fmt.Sprintf("/servers/%d", serverID), query)
}

// CreateServer 创建服务器
// allocation 被占用时返回 apierror.ErrPlacementConflict
func (c *Client) CreateServer(ctx context.Context, req *CreateServerRequest) (*Server, error) {
	var resp item[Server]
	err := c.do(ctx, http.MethodPost, "/servers", nil, req, &resp)
	if err != nil {
		if re, ok := ResponseErrorOf(err); ok && re.IsAllocationConflict() {
			return nil, apierror.WrapError(apierror.ErrPlacementConflict,
				fmt.Sprintf("allocation %d is already assigned", req.Allocation.Default), re)
		}
		return nil, err
	}
	return &resp.Attributes, nil
}

// DeleteServer 删除服务器
func (c *Client) DeleteServer(ctx context.Context, serverID int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/servers/%d", serverID), nil, nil, nil)
}

// ==================== Nest / Egg ====================

// ListNests 列出所有 nest
func (c *Client) ListNests(ctx context.Context) ([]Nest, error) {
	return listAll[Nest](ctx, c, "/nests", nil)
}

// ListEggs 列出 nest 下的所有 egg
func (c *Client) ListEggs(ctx context.Context, nestID int) ([]Egg, error) {
	return listAll[Egg](ctx, c, fmt.Sprintf("/nests/%d/eggs", nestID), nil)
}

// GetEgg 获取 egg 及其环境变量定义
// egg 不存在时返回 apierror.ErrEggNotFound
func (c *Client) GetEgg(ctx context.Context, nestID, eggID int) (*Egg, error) {
	query := url.Values{}
	query.Set("include", "variables")
	egg, err := getOne[Egg](ctx, c, fmt.Sprintf("/nests/%d/eggs/%d", nestID, eggID), query)
	if err != nil {
		if re, ok := ResponseErrorOf(err); ok && re.IsNotFound() {
			return nil, apierror.WrapError(apierror.ErrEggNotFound,
				fmt.Sprintf("egg %d in nest %d not found", eggID, nestID), re)
		}
		return nil, err
	}
	return egg, nil
}

// ==================== 节点与 allocation ====================

// ListNodes 列出所有节点
func (c *Client) ListNodes(ctx context.Context) ([]Node, error) {
	return listAll[Node](ctx, c, "/nodes", nil)
}

// ListAllocations 列出节点上的所有 allocation
func (c *Client) ListAllocations(ctx context.Context, nodeID int) ([]Allocation, error) {
	return listAll[Allocation](ctx, c, fmt.Sprintf("/nodes/%d/allocations", nodeID), nil)
}
