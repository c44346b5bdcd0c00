package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"github.com/Zacy-Sokach/BookingAssistant/internal/api"
	"github.com/stretchr/testify/require"
)

// bookingServer 模拟后端：记录输入历史（不重复），未初始化时拒绝处理
type bookingServer struct {
	mu          sync.Mutex
	initialized bool
	history     []string
}

func (s *bookingServer) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /initialize", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.initialized = true
		s.mu.Unlock()
		writeJSON(w, api.Response{Success: true, Message: "System erfolgreich initialisiert"})
	})
	mux.HandleFunc("POST /process", func(w http.ResponseWriter, r *http.Request) {
		input := r.FormValue(api.FieldInputText)
		s.mu.Lock()
		defer s.mu.Unlock()
		if input != "" && !slices.Contains(s.history, input) {
			s.history = append(s.history, input)
		}
		if !s.initialized {
			writeJSON(w, api.Response{Success: false, Message: "Das System wurde noch nicht initialisiert."})
			return
		}
		writeJSON(w, api.Response{Success: true, Input: input, Output: "<p>Flight options for <b>Berlin</b></p>"})
	})
	mux.HandleFunc("GET /history", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeJSON(w, map[string]any{"history": slices.Clone(s.history)})
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestBookingFlowAgainstServer(t *testing.T) {
	backend := &bookingServer{}
	server := httptest.NewServer(backend.handler())
	defer server.Close()

	m := newTestModel(api.NewClient(server.URL))

	// 未初始化时处理失败，历史仍然由服务端记录
	m.input.SetValue("Book a flight to Berlin")
	m, cmd := update(t, m, keyEnter)
	m, cmd = update(t, m, findMsg[ProcessResultMsg](t, runCmd(cmd)))
	require.Nil(t, cmd)
	require.Equal(t, outputFailure, m.outputKind)
	require.Equal(t, "Das System wurde noch nicht initialisiert.", m.outputFailure.text)
	require.False(t, m.submitDisabled)

	// 初始化
	m, cmd = update(t, m, keyInit)
	m, cmd = update(t, m, findMsg[InitializeResultMsg](t, runCmd(cmd)))
	require.Equal(t, statusSuccess, m.initStatus.kind)
	m, _ = update(t, m, findMsg[InitSectionHiddenMsg](t, runCmd(cmd)))
	require.False(t, m.initSectionVisible)

	// 再次提交成功，输出替换为服务端片段并刷新历史
	m, cmd = update(t, m, keyEnter)
	m, cmd = update(t, m, findMsg[ProcessResultMsg](t, runCmd(cmd)))
	require.Equal(t, outputFragment, m.outputKind)
	require.Equal(t, "<p>Flight options for <b>Berlin</b></p>", m.outputFragment)
	require.Contains(t, m.output.View(), "Flight options for")

	m, _ = update(t, m, findMsg[HistoryResultMsg](t, runCmd(cmd)))
	require.Equal(t, []string{"Book a flight to Berlin"}, historyEntries(m.history))
}

func TestConnectionErrorAgainstClosedServer(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	m := newTestModel(api.NewClient(url))
	m.input.SetValue("Hotel")

	m, cmd := update(t, m, keyEnter)
	m, _ = update(t, m, findMsg[ProcessResultMsg](t, runCmd(cmd)))
	require.Equal(t, msgConnectionFailed, m.outputFailure.text)
	require.False(t, m.submitDisabled)

	m, cmd = update(t, m, keyInit)
	m, _ = update(t, m, findMsg[InitializeResultMsg](t, runCmd(cmd)))
	require.Equal(t, msgConnectionFailed, m.initStatus.text)
	require.False(t, m.initDisabled)
}
