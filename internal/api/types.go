package api

import "fmt"

// 接口路径
const (
	PathInitialize = "/initialize"
	PathProcess    = "/process"
	PathHistory    = "/history"

	// 记账规则文档的上传与入库
	PathUploadPDF   = "/upload_pdf"
	PathProcessFile = "/process_file"
	PathDocuments   = "/load_history_modula"

	// FieldInputText /process 表单中唯一的字段
	FieldInputText = "input_text"
	// FieldFile /upload_pdf 的文件字段
	FieldFile = "file"
)

// Response 三个接口共用的响应结构，字段按需读取，缺失即零值
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Output  string   `json:"output,omitempty"` // HTML 片段
	Input   string   `json:"input,omitempty"`
	History []string `json:"history,omitempty"`

	// 文档接口
	Filename   string   `json:"filename,omitempty"`
	Files      []string `json:"files,omitempty"`
	ChunkCount int      `json:"anzahl_chunks,omitempty"`
	Documents  []string `json:"history_modula,omitempty"`
}

// APIError 表示服务端返回了非 2xx 状态码
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API请求失败 (状态码: %d): %s", e.StatusCode, e.Message)
}

// TransportError 传输层失败：网络错误、非 2xx 状态码或响应无法解析
// 与 Response.Success == false 的业务失败区分开
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
