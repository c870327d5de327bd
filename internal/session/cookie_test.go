package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCookieRoundTrip(t *testing.T) {
	codec := NewCookieCodec("sf_session", "test-secret", time.Hour, false)

	w := httptest.NewRecorder()
	if err := codec.Write(w, "sid-123"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	if !cookies[0].HttpOnly {
		t.Error("cookie must be HttpOnly")
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])

	if got := codec.Read(r); got != "sid-123" {
		t.Errorf("Read() = %q, want %q", got, "sid-123")
	}
}

func TestCookieReadMissing(t *testing.T) {
	codec := NewCookieCodec("sf_session", "test-secret", time.Hour, false)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := codec.Read(r); got != "" {
		t.Errorf("Read() = %q, want empty", got)
	}
}

func TestCookieReadRejectsTampered(t *testing.T) {
	codec := NewCookieCodec("sf_session", "test-secret", time.Hour, false)

	w := httptest.NewRecorder()
	if err := codec.Write(w, "sid-123"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	cookie := w.Result().Cookies()[0]
	cookie.Value += "x"

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookie)

	if got := codec.Read(r); got != "" {
		t.Errorf("Read() = %q, want empty for tampered cookie", got)
	}
}

func TestCookieReadRejectsWrongSecret(t *testing.T) {
	writer := NewCookieCodec("sf_session", "secret-a", time.Hour, false)
	reader := NewCookieCodec("sf_session", "secret-b", time.Hour, false)

	w := httptest.NewRecorder()
	if err := writer.Write(w, "sid-123"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(w.Result().Cookies()[0])

	if got := reader.Read(r); got != "" {
		t.Errorf("Read() = %q, want empty for wrong secret", got)
	}
}

func TestCookieClearExpires(t *testing.T) {
	codec := NewCookieCodec("sf_session", "test-secret", time.Hour, false)

	w := httptest.NewRecorder()
	codec.Clear(w)

	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("len(cookies) = %d, want 1", len(cookies))
	}
	if cookies[0].MaxAge != -1 {
		t.Errorf("MaxAge = %d, want -1", cookies[0].MaxAge)
	}
	if cookies[0].Value != "" {
		t.Errorf("Value = %q, want empty", cookies[0].Value)
	}
}
