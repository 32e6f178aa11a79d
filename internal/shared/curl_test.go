package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	t.Run("SingleQuotedHeaders", func(t *testing.T) {
		cmd := `curl 'https://music.youtube.com/youtubei/v1/browse' \
  -H 'authorization: SAPISIDHASH abc123' \
  -H 'cookie: VISITOR_INFO1_LIVE=xyz; SID=secret' \
  -H 'x-goog-authuser: 0'`

		parsed, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("failed to parse curl command: %v", err)
		}

		if parsed.Headers["authorization"] != "SAPISIDHASH abc123" {
			t.Errorf("unexpected authorization header %q", parsed.Headers["authorization"])
		}
		if parsed.Cookie != "VISITOR_INFO1_LIVE=xyz; SID=secret" {
			t.Errorf("unexpected cookie %q", parsed.Cookie)
		}
		if _, ok := parsed.Headers["cookie"]; ok {
			t.Error("cookie should be extracted, not kept as a header")
		}
	})

	t.Run("DoubleQuotedHeaders", func(t *testing.T) {
		cmd := `curl "https://example.com" -H "accept: application/json"`

		parsed, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("failed to parse curl command: %v", err)
		}
		if parsed.Headers["accept"] != "application/json" {
			t.Errorf("unexpected accept header %q", parsed.Headers["accept"])
		}
	})

	t.Run("CookieFlagOverridesHeader", func(t *testing.T) {
		cmd := `curl 'https://example.com' -H 'cookie: from_header' -b 'from_flag'`

		parsed, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("failed to parse curl command: %v", err)
		}
		if parsed.Cookie != "from_flag" {
			t.Errorf("expected -b flag to win, got %q", parsed.Cookie)
		}
	})

	t.Run("NoHeaders", func(t *testing.T) {
		if _, err := ParseCurlCommand([]byte("curl https://example.com")); err == nil {
			t.Error("expected error for command without headers")
		}
	})
}

func TestParseCurlFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "request.sh")
	cmd := `curl 'https://music.youtube.com' -H 'user-agent: Mozilla/5.0'`
	if err := os.WriteFile(path, []byte(cmd), 0644); err != nil {
		t.Fatalf("failed to write curl file: %v", err)
	}

	parsed, err := ParseCurlFile(path)
	if err != nil {
		t.Fatalf("failed to parse curl file: %v", err)
	}
	if parsed.Headers["user-agent"] != "Mozilla/5.0" {
		t.Errorf("unexpected user-agent %q", parsed.Headers["user-agent"])
	}

	if _, err := ParseCurlFile(filepath.Join(t.TempDir(), "absent.sh")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestToHeadersRaw(t *testing.T) {
	parsed := &CurlHeaders{
		Headers: map[string]string{"authorization": "SAPISIDHASH abc"},
		Cookie:  "SID=secret",
	}

	raw := parsed.ToHeadersRaw()
	if !strings.Contains(raw, "authorization: SAPISIDHASH abc") {
		t.Errorf("headers_raw missing authorization line: %q", raw)
	}
	if !strings.Contains(raw, "cookie: SID=secret") {
		t.Errorf("headers_raw missing cookie line: %q", raw)
	}
}
