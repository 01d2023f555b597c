package masterdata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ppconvert/internal/model"
)

// 参照数据服务路径
const (
	PathOperatingVessels = "/api/master/operating-vessels"
	PathPorts            = "/api/master/ports"
	PathAgents           = "/api/master/agents"
	PathEscortLocations  = "/api/master/escort-locations"
	PathLoadedCargo      = "/api/master/loaded-cargo"
	PathBerths           = "/api/master/berths"
	PathMasterTowing     = "/api/master/master-towing"
	PathHistory          = "/api/emps"
	PathHistoryBulk      = "/api/emps/bulk"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultMaxTries = 3
	defaultInitial  = 500 * time.Millisecond
)

// Client 参照数据服务客户端（主数据 + 空船历史）
type Client struct {
	endpoint string
	http     *http.Client
	logger   *zap.Logger
	maxTries uint
	initial  time.Duration
}

// Option 客户端选项
type Option func(*Client)

// WithHTTPClient 替换底层 http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger 设置日志
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithRetry 设置重试次数与初始间隔
func WithRetry(maxTries uint, initial time.Duration) Option {
	return func(c *Client) {
		c.maxTries = max(maxTries, 1)
		c.initial = initial
	}
}

// NewClient 创建客户端；endpoint 为服务根地址，例如 http://localhost:8000
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: defaultTimeout},
		logger:   zap.NewNop(),
		maxTries: defaultMaxTries,
		initial:  defaultInitial,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint 服务根地址
func (c *Client) Endpoint() string { return c.endpoint }

// LoadMaster 并行拉取七类主数据
//
// 单个集合失败时降级为空列表并记录警告，不中断会话；只有 ctx 取消会返回错误。
func (c *Client) LoadMaster(ctx context.Context) (*model.MasterData, error) {
	m := &model.MasterData{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return fetchInto(gctx, c, PathOperatingVessels, &m.OperatingVessels) })
	g.Go(func() error { return fetchInto(gctx, c, PathPorts, &m.Ports) })
	g.Go(func() error { return fetchInto(gctx, c, PathAgents, &m.Agents) })
	g.Go(func() error { return fetchInto(gctx, c, PathEscortLocations, &m.EscortLocations) })
	g.Go(func() error { return fetchInto(gctx, c, PathLoadedCargo, &m.LoadedCargo) })
	g.Go(func() error { return fetchInto(gctx, c, PathBerths, &m.Berths) })
	g.Go(func() error { return fetchInto(gctx, c, PathMasterTowing, &m.MasterTowing) })

	if err := g.Wait(); err != nil {
		return nil, err
	}
	m.EnrichBerths()

	c.logger.Info("master data loaded",
		zap.String("endpoint", c.endpoint),
		zap.Int("ports", len(m.Ports)),
		zap.Int("berths", len(m.Berths)),
		zap.Int("towing", len(m.MasterTowing)),
	)
	return m, nil
}

// fetchInto 拉取单个集合写入 dst；失败时 dst 置为空列表
func fetchInto[T any](ctx context.Context, c *Client, path string, dst *[]T) error {
	list, err := fetchList[T](ctx, c, path)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("fetch %s: %w", path, ctx.Err())
		}
		c.logger.Warn("master collection unavailable, using empty list", zap.String("path", path), zap.Error(err))
		*dst = []T{}
		return nil
	}
	*dst = list
	return nil
}

// LoadHistory 拉取空船历史（服务端按 updated_at 倒序）
func (c *Client) LoadHistory(ctx context.Context) ([]model.HistoricalShipmentRecord, error) {
	list, err := fetchList[model.HistoricalShipmentRecord](ctx, c, PathHistory)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return list, nil
}

// SaveHistory 批量回写历史；服务端以一次会话 ID 插入，非幂等，不重试
func (c *Client) SaveHistory(ctx context.Context, rows []model.HistoryWriteBack) error {
	if len(rows) == 0 {
		return nil
	}
	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("encode history: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+PathHistoryBulk, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post history: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("post history: status %d", resp.StatusCode)
	}
	c.logger.Info("history saved", zap.Int("rows", len(rows)))
	return nil
}

func fetchList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	data, err := c.getWithRetry(ctx, path)
	if err != nil {
		return nil, err
	}
	return decodeList[T](data)
}

// decodeList 兼容裸数组与 {"data": [...]} 两种响应
func decodeList[T any](data []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return list, nil
	}

	var wrapped struct {
		Data []T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapped); err != nil {
		return nil, fmt.Errorf("decode wrapped list: %w", err)
	}
	if wrapped.Data == nil {
		return []T{}, nil
	}
	return wrapped.Data, nil
}

// isRetryableStatus 429 与 5xx 视为暂时性失败
func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	url := c.endpoint + path

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if isRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, backoff.Permanent(fmt.Errorf("GET %s: status %d", path, resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return body, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initial
	bo.MaxInterval = 10 * c.initial

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(c.maxTries),
		backoff.WithNotify(func(err error, next time.Duration) {
			c.logger.Debug("retrying reference fetch", zap.String("path", path), zap.Duration("next", next), zap.Error(err))
		}),
	)
}
