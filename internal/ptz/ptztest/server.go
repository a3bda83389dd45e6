// Package ptztest Dahua PTZ CGI を模したテスト用HTTPサーバーを提供する
package ptztest

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
)

const (
	// DefaultUsername はシミュレーターが受け付けるユーザー名
	DefaultUsername = "admin"
	// DefaultPassword はシミュレーターが受け付けるパスワード
	DefaultPassword = "admin123"

	realm  = "Login to ptztest"
	nonce  = "dcd98b7102dd2f0e8b11d0f600bfb0c093"
	opaque = "5ccc069c403ebaf9f0171e9517f40e41"
)

// DefaultStatusBody は getStatus の既定レスポンス
const DefaultStatusBody = "status.Postion[0]=120.5\r\n" +
	"status.Postion[1]=-10.25\r\n" +
	"status.Postion[2]=3\r\n" +
	"status.MoveStatus=Idle\r\n" +
	"status.ZoomStatus=Idle\r\n" +
	"status.PresetID=2\r\n" +
	"status.ZoomValue=300\r\n" +
	"status.Focus.FocusPosition=0.75\r\n" +
	"status.Focus.Status=Normal\r\n"

// DefaultPresetsBody は getPresets の既定レスポンス
const DefaultPresetsBody = "presets[0].Index=1\r\n" +
	"presets[0].Name=Gate\r\n" +
	"presets[1].Index=5\r\n" +
	"presets[1].Name=Parking Lot\r\n"

// Server はダイジェスト認証付きでPTZ CGIを模擬する
type Server struct {
	*httptest.Server

	Username string
	Password string

	mu          sync.Mutex
	requests    []url.Values
	statusBody  string
	presetsBody string
	commandBody string
	statusCode  int
}

// NewServer はシミュレーターを起動する。テスト終了時に停止する
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		Username:    DefaultUsername,
		Password:    DefaultPassword,
		statusBody:  DefaultStatusBody,
		presetsBody: DefaultPresetsBody,
		commandBody: "OK\r\n",
		statusCode:  http.StatusOK,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Host は "127.0.0.1:port" 形式の接続先を返す
func (s *Server) Host() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// Requests は認証済みリクエストのクエリ一覧を返す
func (s *Server) Requests() []url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]url.Values, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest は最後の認証済みリクエストのクエリを返す
func (s *Server) LastRequest() url.Values {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return nil
	}
	return s.requests[len(s.requests)-1]
}

// SetStatusBody は getStatus のレスポンスを差し替える
func (s *Server) SetStatusBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusBody = body
}

// SetPresetsBody は getPresets のレスポンスを差し替える
func (s *Server) SetPresetsBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presetsBody = body
}

// SetCommandBody はコマンドのレスポンスを差し替える
func (s *Server) SetCommandBody(body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commandBody = body
}

// SetStatusCode は認証後のHTTPステータスを差し替える
func (s *Server) SetStatusCode(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statusCode = code
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/cgi-bin/ptz.cgi" {
		http.NotFound(w, r)
		return
	}

	if !s.authorized(r) {
		w.Header().Set("WWW-Authenticate", fmt.Sprintf(
			`Digest realm="%s", qop="auth", nonce="%s", opaque="%s"`, realm, nonce, opaque))
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = fmt.Fprint(w, "Error\r\nInvalid Authority!\r\n")
		return
	}

	query := r.URL.Query()

	s.mu.Lock()
	s.requests = append(s.requests, query)
	code := s.statusCode
	var body string
	switch query.Get("action") {
	case "getStatus":
		body = s.statusBody
	case "getPresets":
		body = s.presetsBody
	default:
		body = s.commandBody
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "text/plain;charset=utf-8")
	w.WriteHeader(code)
	_, _ = fmt.Fprint(w, body)
}

// authorized は RFC 2617 (qop=auth, MD5) のダイジェスト応答を検証する
func (s *Server) authorized(r *http.Request) bool {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Digest ") {
		return false
	}
	params := parseDigestParams(strings.TrimPrefix(header, "Digest "))

	if params["username"] != s.Username || params["realm"] != realm || params["nonce"] != nonce {
		return false
	}

	ha1 := md5Hex(fmt.Sprintf("%s:%s:%s", s.Username, realm, s.Password))
	ha2 := md5Hex(fmt.Sprintf("%s:%s", r.Method, params["uri"]))

	var expected string
	if params["qop"] == "" {
		expected = md5Hex(fmt.Sprintf("%s:%s:%s", ha1, nonce, ha2))
	} else {
		expected = md5Hex(fmt.Sprintf("%s:%s:%s:%s:%s:%s",
			ha1, nonce, params["nc"], params["cnonce"], params["qop"], ha2))
	}
	return params["response"] == expected
}

func parseDigestParams(raw string) map[string]string {
	params := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		params[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
	return params
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}
