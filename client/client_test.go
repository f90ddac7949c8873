package client

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/printer/config"
	"github.com/adamwoolhether/printer/conn"
	"github.com/adamwoolhether/printer/errs"
	"github.com/adamwoolhether/printer/printertest"
	"github.com/adamwoolhether/printer/sink"
)

func TestNew_Validation(t *testing.T) {
	tests := map[string]struct {
		base string
		opts []Option
	}{
		"empty base":       {base: ""},
		"relative base":    {base: "/render"},
		"negative timeout": {base: "http://localhost:3000", opts: []Option{WithTimeout(-time.Second)}},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := New(tc.base, tc.opts...); !errors.Is(err, errs.ErrInvalidArgument) {
				t.Errorf("exp ErrInvalidArgument, got: %v", err)
			}
		})
	}

	if _, err := New("http://localhost:3000", WithLogger(nil)); err == nil {
		t.Error("exp error for nil logger")
	}
}

func TestNew_SanitizesBase(t *testing.T) {
	c, err := New(" http://local host:3000/\n")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if c.base != "http://localhost:3000/" {
		t.Errorf("base = %q", c.base)
	}
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %s, want %s", c.timeout, DefaultTimeout)
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		base, route, want string
	}{
		{"http://h:3000", "/document", "http://h:3000/document"},
		{"http://h:3000/", "/document", "http://h:3000/document"},
		{"http://h:3000//", "document", "http://h:3000/document"},
		{"http://h:3000/api/", "//image", "http://h:3000/api/image"},
	}

	for _, tc := range tests {
		if got := join(tc.base, tc.route); got != tc.want {
			t.Errorf("join(%q, %q) = %q, want %q", tc.base, tc.route, got, tc.want)
		}
	}
}

func TestClient_RenderDocumentBytes(t *testing.T) {
	srv := printertest.NewServer()
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	got, err := c.RenderDocumentBytes(t.Context(), nil, "<html></html>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if diff := cmp.Diff(printertest.DefaultDocument, got); diff != "" {
		t.Errorf("bytes mismatch (-want +got):\n%s", diff)
	}
	if c.conn != nil {
		t.Error("exp connection released after a disposing render")
	}

	reqs := srv.Requests()
	if len(reqs) != 1 || reqs[0].Route != RouteDocument {
		t.Fatalf("requests = %+v", reqs)
	}
	if reqs[0].Payload.Configuration["pageFormat"] != "A4" {
		t.Errorf("exp default document configuration, got %v", reqs[0].Payload.Configuration)
	}
}

func TestClient_RenderImageBytes(t *testing.T) {
	srv := printertest.NewServer(printertest.WithImage([]byte("webp-bytes")))
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	cfg := config.NewImage()
	cfg.SetType("webp")
	cfg.SetQuality(80)

	got, err := c.RenderImageBytes(t.Context(), cfg, "<p>shot</p>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(got) != "webp-bytes" {
		t.Errorf("bytes = %q", got)
	}

	reqs := srv.Requests()
	if reqs[0].Route != RouteImage {
		t.Errorf("route = %q", reqs[0].Route)
	}
	if reqs[0].Payload.Configuration["quality"] != float64(80) {
		t.Errorf("configuration = %v", reqs[0].Payload.Configuration)
	}
}

func TestClient_ConnectionReuse(t *testing.T) {
	srv := printertest.NewServer()
	defer srv.Close()

	c, err := New(srv.URL + "/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	if _, err := c.RenderDocument(t.Context(), nil, "one", WithKeepAlive()); err != nil {
		t.Fatalf("render: %v", err)
	}
	first := c.conn

	if _, err := c.RenderDocument(t.Context(), nil, "two", WithKeepAlive()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if c.conn != first {
		t.Fatal("exp same-route render to reuse the connection")
	}

	if _, err := c.RenderImage(t.Context(), nil, "three", WithKeepAlive()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if c.conn == first {
		t.Fatal("exp route switch to open a new connection")
	}
	if first.IsActive() {
		t.Error("exp previous connection released on route switch")
	}

	second := c.conn
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if second.IsActive() || c.conn != nil {
		t.Error("exp Close to release the kept connection")
	}
	if err := c.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}

	if n := len(srv.Requests()); n != 3 {
		t.Errorf("service received %d requests, want 3", n)
	}
}

func TestClient_ReplacesInactiveConnection(t *testing.T) {
	srv := printertest.NewServer()
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	if _, err := c.RenderDocument(t.Context(), nil, "one", WithKeepAlive()); err != nil {
		t.Fatalf("render: %v", err)
	}
	stale := c.conn
	if err := stale.Done(); err != nil {
		t.Fatalf("done: %v", err)
	}

	if _, err := c.RenderDocument(t.Context(), nil, "two", WithKeepAlive()); err != nil {
		t.Fatalf("render after external close: %v", err)
	}
	if c.conn == stale || !c.conn.IsActive() {
		t.Error("exp a fresh active connection")
	}
}

func TestClient_BaseWithPath(t *testing.T) {
	svc := printertest.NewService()
	srv := httptest.NewServer(http.StripPrefix("/api", svc))
	defer srv.Close()

	c, err := New(srv.URL + "/api/")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()

	if _, err := c.RenderDocument(t.Context(), nil, "one", WithKeepAlive()); err != nil {
		t.Fatalf("render: %v", err)
	}
	first := c.conn

	if _, err := c.RenderDocument(t.Context(), nil, "two", WithKeepAlive()); err != nil {
		t.Fatalf("render: %v", err)
	}
	if c.conn != first {
		t.Error("exp connection reuse under a base path")
	}

	if n := len(svc.Requests()); n != 2 {
		t.Errorf("service received %d requests, want 2", n)
	}
}

func TestClient_WithSink(t *testing.T) {
	srv := printertest.NewServer()
	defer srv.Close()

	c, err := New(srv.URL)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	buf := sink.New()
	if _, err := buf.Write([]byte("prefix")); err != nil {
		t.Fatalf("write: %v", err)
	}

	ws, err := c.RenderDocument(t.Context(), nil, "x", WithSink(buf))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if ws != buf {
		t.Fatal("exp the supplied sink to be returned")
	}

	pos, _ := buf.Seek(0, io.SeekCurrent)
	if pos != int64(len("prefix")) {
		t.Errorf("position = %d", pos)
	}

	want := append([]byte("prefix"), printertest.DefaultDocument...)
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("sink = %q, want %q", buf.Bytes(), want)
	}
}

func TestClient_WithNilSink(t *testing.T) {
	c, err := New("http://localhost:3000")
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := c.RenderDocument(t.Context(), nil, "x", WithSink(nil)); !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("exp ErrInvalidArgument, got: %v", err)
	}
	if c.conn != nil {
		t.Error("exp no connection opened for an invalid call")
	}
}

func TestClient_ConnectionErrorReleases(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	c, err := New("http://"+addr, WithTimeout(2*time.Second))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = c.RenderDocumentBytes(t.Context(), nil, "x")

	connErr, ok := errors.AsType[*errs.ConnectionError](err)
	if !ok {
		t.Fatalf("exp *errs.ConnectionError, got: %v", err)
	}
	if connErr.Code != errs.CodeConnect {
		t.Errorf("code = %d", connErr.Code)
	}
	if c.conn != nil {
		t.Error("exp connection released after a failed disposing render")
	}
}

func TestClient_StatusCheckOption(t *testing.T) {
	srv := printertest.NewServer()
	defer srv.Close()

	c, err := New(srv.URL+"/missing", WithConnOptions(conn.WithStatusCheck()))
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	_, err = c.RenderDocumentBytes(t.Context(), nil, "x")
	if usErr, ok := errors.AsType[*errs.UnexpectedStatusError](err); !ok || usErr.StatusCode != http.StatusNotFound {
		t.Errorf("exp 404 UnexpectedStatusError, got: %v", err)
	}
}

type writeOnly struct {
	sink.Buffer
}

func (w *writeOnly) Read([]byte) (int, error) { return 0, errors.New("unreachable") }

type notReadable struct {
	io.WriteSeeker
}

func TestReadAll_Errors(t *testing.T) {
	c := &Client{logger: slog.New(slog.DiscardHandler)}

	if _, err := c.readAll(notReadable{sink.New()}); !errors.Is(err, errs.ErrClient) {
		t.Errorf("not readable: exp ErrClient, got: %v", err)
	}
	if _, err := c.readAll(&writeOnly{}); !errors.Is(err, errs.ErrClient) {
		t.Errorf("failing read: exp ErrClient, got: %v", err)
	}
}

type failingCloser struct {
	sink.Buffer
}

func (f *failingCloser) Close() error { return errors.New("sink already released") }

func TestReadAll_LogsCloseFailure(t *testing.T) {
	var logs bytes.Buffer
	c := &Client{logger: slog.New(slog.NewTextHandler(&logs, nil))}

	fc := &failingCloser{}
	if _, err := fc.Write([]byte("pdf")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := fc.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("seek: %v", err)
	}

	b, err := c.readAll(fc)
	if err != nil {
		t.Fatalf("read all: %v", err)
	}
	if string(b) != "pdf" {
		t.Errorf("bytes = %q, want %q", b, "pdf")
	}

	out := logs.String()
	if !strings.Contains(out, "failed to close sink") || !strings.Contains(out, "sink already released") {
		t.Errorf("exp close failure logged, got: %s", out)
	}
}
