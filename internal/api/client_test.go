package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestInitialize_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, PathInitialize, r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, map[string]any{"success": true, "message": "System erfolgreich initialisiert"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Initialize(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "System erfolgreich initialisiert", resp.Message)
}

func TestInitialize_ApplicationFailureIsNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"success": false, "message": "Fehler bei der Initialisierung"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Initialize(context.Background())
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, "Fehler bei der Initialisierung", resp.Message)
}

func TestProcess_SendsTrimmedFormField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, PathProcess, r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		require.Len(t, r.PostForm, 1)
		input := r.PostForm.Get(FieldInputText)
		writeJSON(w, Response{Success: true, Input: input, Output: "<p>Flight options</p>"})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL+"/").Process(context.Background(), "Book a flight to Berlin")
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "Book a flight to Berlin", resp.Input)
	require.Equal(t, "<p>Flight options</p>", resp.Output)
}

func TestHistory_PreservesServerOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, PathHistory, r.URL.Path)
		writeJSON(w, map[string]any{"history": []string{"c", "a", "b", "a"}})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).History(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"c", "a", "b", "a"}, resp.History)
	// /history 只返回 history 字段
	require.False(t, resp.Success)
}

func TestUploadPDF_Multipart(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, PathUploadPDF, r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile(FieldFile)
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "richtlinie.pdf", header.Filename)
		require.Equal(t, "%PDF-1.4 test", string(data))

		writeJSON(w, map[string]any{
			"success":  true,
			"message":  "PDF-Datei erfolgreich geladen.",
			"filename": header.Filename,
			"files":    []string{"alt.pdf", header.Filename},
		})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).UploadPDF(context.Background(), "richtlinie.pdf", strings.NewReader("%PDF-1.4 test"))
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, "richtlinie.pdf", resp.Filename)
	require.Equal(t, []string{"alt.pdf", "richtlinie.pdf"}, resp.Files)
}

func TestProcessFile_ChunkCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, PathProcessFile, r.URL.Path)
		writeJSON(w, map[string]any{"success": true, "message": "Verarbeitung abgeschlossen.", "anzahl_chunks": 42})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).ProcessFile(context.Background())
	require.NoError(t, err)
	require.True(t, resp.Success)
	require.Equal(t, 42, resp.ChunkCount)
}

func TestDocuments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, PathDocuments, r.URL.Path)
		writeJSON(w, map[string]any{"success": true, "history_modula": []string{"a.pdf", "b.pdf"}})
	}))
	defer server.Close()

	resp, err := NewClient(server.URL).Documents(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"a.pdf", "b.pdf"}, resp.Documents)
}

func TestBaseURLTrimsSlash(t *testing.T) {
	require.Equal(t, "http://booking.test", NewClient("http://booking.test/").BaseURL())
}

func TestNon2xxIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Process(context.Background(), "x")
	require.Error(t, err)

	var transportErr *TransportError
	require.True(t, errors.As(err, &transportErr))
	require.Equal(t, "POST /process", transportErr.Op)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
	require.Equal(t, "boom", apiErr.Message)
}

func TestInvalidJSONIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).History(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestNetworkErrorIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).Initialize(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

func TestSingleAttemptNoRetry(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Initialize(context.Background())
	require.Error(t, err)
	require.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	_, err := NewClient(server.URL, WithTimeout(50*time.Millisecond)).History(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
}

type stubDoer struct {
	req *http.Request
}

func (s *stubDoer) Do(req *http.Request) (*http.Response, error) {
	s.req = req
	return nil, errors.New("offline")
}

func TestWithDoer(t *testing.T) {
	d := &stubDoer{}
	_, err := NewClient("http://booking.test", WithDoer(d)).History(context.Background())
	require.Error(t, err)
	require.NotNil(t, d.req)
	require.Equal(t, "http://booking.test/history", d.req.URL.String())
	require.Equal(t, "application/json", d.req.Header.Get("Accept"))
}
