package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Zacy-Sokach/BookingAssistant/internal/utils"
	"github.com/google/uuid"
)

// DefaultTimeout 默认请求超时
const DefaultTimeout = 60 * time.Second

// 错误响应体最多读取的字节数
const maxErrorBody = 4096

const formContentType = "application/x-www-form-urlencoded; charset=UTF-8"

// 全局共享的Transport，实现连接池化
var (
	sharedTransport *http.Transport
	transportOnce   sync.Once
)

func getSharedTransport() *http.Transport {
	transportOnce.Do(func() {
		sharedTransport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
		}
	})
	return sharedTransport
}

type Client struct {
	baseURL string
	doer    utils.Doer
	timeout time.Duration
	logger  *utils.Logger
}

type Option func(*Client)

// WithDoer 替换底层HTTP客户端
func WithDoer(d utils.Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithTimeout 设置请求超时，0 表示不限制
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

func WithLogger(l *utils.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient 创建访问预订助手后端的客户端
// baseURL: 服务器根地址，例如 http://localhost:5000
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		logger:  utils.NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.doer == nil {
		c.doer = &http.Client{
			Timeout:   c.timeout,
			Transport: getSharedTransport(),
		}
	}
	return c
}

// BaseURL 返回服务器根地址，末尾不带 /
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Initialize 请求服务端执行一次性初始化
func (c *Client) Initialize(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodPost, PathInitialize, nil, "")
}

// Process 提交用户输入，input 原样发送，调用方负责去除首尾空白
func (c *Client) Process(ctx context.Context, input string) (*Response, error) {
	form := url.Values{}
	form.Set(FieldInputText, input)
	return c.do(ctx, http.MethodPost, PathProcess, strings.NewReader(form.Encode()), formContentType)
}

// History 获取服务端保存的输入历史
func (c *Client) History(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, PathHistory, nil, "")
}

// UploadPDF 以 multipart 方式上传记账规则 PDF，文件类型由服务端校验
func (c *Client) UploadPDF(ctx context.Context, filename string, r io.Reader) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(FieldFile, filename)
	if err != nil {
		return nil, fmt.Errorf("创建上传表单失败: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("读取上传文件失败: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("创建上传表单失败: %w", err)
	}
	return c.do(ctx, http.MethodPost, PathUploadPDF, &buf, mw.FormDataContentType())
}

// ProcessFile 让服务端把最近上传的文档切块并写入向量库
func (c *Client) ProcessFile(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodPost, PathProcessFile, nil, "")
}

// Documents 已入库的文档文件名
func (c *Client) Documents(ctx context.Context) (*Response, error) {
	return c.do(ctx, http.MethodGet, PathDocuments, nil, "")
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*Response, error) {
	op := method + " " + path
	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID)

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("创建请求失败: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		log.Warn("请求失败", "op", op, "error", err)
		return nil, &TransportError{Op: op, Err: fmt.Errorf("请求失败: %w", err)}
	}
	defer resp.Body.Close()

	log.Debug("收到响应", "op", op, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(bodyBytes))}
		log.Warn("服务端返回错误状态", "op", op, "status", resp.StatusCode)
		return nil, &TransportError{Op: op, Err: apiErr}
	}

	var out Response
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		log.Warn("解析响应失败", "op", op, "error", err)
		return nil, &TransportError{Op: op, Err: fmt.Errorf("解析响应失败: %w", err)}
	}

	return &out, nil
}
