package cli

import (
	"errors"
	"fmt"

	"github.com/Zacy-Sokach/BookingAssistant/internal/api"
	"github.com/Zacy-Sokach/BookingAssistant/internal/render"
)

var errEmptyInput = errors.New("输入不能为空")

// appFailureError 服务端返回 success=false
type appFailureError struct {
	op      string
	message string
}

func (e appFailureError) Error() string {
	if e.message == "" {
		return fmt.Sprintf("%s失败", e.op)
	}
	return fmt.Sprintf("%s失败: %s", e.op, e.message)
}

func errAppFailure(op string, resp *api.Response) error {
	return appFailureError{op: op, message: render.PlainText(resp.Message)}
}

// connectionError 把传输错误统一成界面上的提示语
func connectionError(err error) error {
	return fmt.Errorf("连接服务器失败: %w", err)
}
