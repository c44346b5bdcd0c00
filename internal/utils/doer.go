package utils

import "net/http"

// Doer 发送HTTP请求的最小接口，*http.Client 即满足，测试中可替换
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}
