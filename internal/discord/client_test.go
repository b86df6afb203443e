package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
)

func TestNormalizeID(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"BareID", "123456789012345678", "123456789012345678"},
		{"Mention", "<@123456789012345678>", "123456789012345678"},
		{"NicknameMention", "<@!123456789012345678>", "123456789012345678"},
		{"NoDigits", "not-an-id", "not-an-id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeID(tc.in); got != tc.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestSendDM(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/@me/channels":
			if got := r.Header.Get("Authorization"); got != "Bot test-token" {
				t.Errorf("unexpected auth header %q", got)
			}
			json.NewEncoder(w).Encode(map[string]string{"id": "chan-1"})
		case "/channels/chan-1/messages":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["content"] != "hello" {
				t.Errorf("unexpected message content %q", body["content"])
			}
			w.WriteHeader(http.StatusOK)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", "guild-1", zerolog.Nop())
	if err := c.SendDM(context.Background(), "<@42>", "hello"); err != nil {
		t.Fatalf("SendDM failed: %v", err)
	}
}

func TestSendDMWithoutToken(t *testing.T) {
	c := NewClient("http://unused", "", "", zerolog.Nop())
	if err := c.SendDM(context.Background(), "42", "hello"); err == nil {
		t.Fatal("expected error with empty bot token")
	}
}

func TestRateLimitRetry(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", "guild-1", zerolog.Nop())
	if err := c.SendChannelMessage(context.Background(), "chan-1", "retry me"); err != nil {
		t.Fatalf("expected success after retries: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
}

func TestRateLimitExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-token", "", zerolog.Nop())
	if err := c.SendChannelMessage(context.Background(), "chan-1", "never"); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
}

func TestGuildMemberUsername(t *testing.T) {
	t.Run("ModernUsername", func(t *testing.T) {
		srv := memberServer(t, map[string]any{
			"nick": "Nicky",
			"user": map[string]string{"username": "realname", "discriminator": "0"},
		})
		defer srv.Close()

		c := NewClient(srv.URL, "test-token", "guild-1", zerolog.Nop())
		got, err := c.GuildMemberUsername(context.Background(), "42")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got != "realname" {
			t.Errorf("got %q, want realname", got)
		}
	})

	t.Run("LegacyDiscriminator", func(t *testing.T) {
		srv := memberServer(t, map[string]any{
			"user": map[string]string{"username": "old", "discriminator": "1234"},
		})
		defer srv.Close()

		c := NewClient(srv.URL, "test-token", "guild-1", zerolog.Nop())
		got, err := c.GuildMemberUsername(context.Background(), "42")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got != "old#1234" {
			t.Errorf("got %q, want old#1234", got)
		}
	})

	t.Run("NoGuildConfigured", func(t *testing.T) {
		c := NewClient("http://unused", "test-token", "", zerolog.Nop())
		if _, err := c.GuildMemberUsername(context.Background(), "42"); err == nil {
			t.Fatal("expected error without guild id")
		}
	})
}

func memberServer(t *testing.T, payload map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(payload)
	}))
}

func TestAuthorizeURL(t *testing.T) {
	o := NewOAuth("http://unused", "client-1", "secret", "https://portal.example/callback")
	raw := o.AuthorizeURL("state-abc")

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}
	if !strings.HasPrefix(raw, "https://discord.com/oauth2/authorize?") {
		t.Errorf("unexpected base url: %s", raw)
	}
	q := u.Query()
	if q.Get("client_id") != "client-1" {
		t.Errorf("client_id = %q", q.Get("client_id"))
	}
	if q.Get("state") != "state-abc" {
		t.Errorf("state = %q", q.Get("state"))
	}
	if q.Get("scope") != "identify" {
		t.Errorf("scope = %q", q.Get("scope"))
	}
	if q.Get("response_type") != "code" {
		t.Errorf("response_type = %q", q.Get("response_type"))
	}
}

func TestExchangeCodeAndFetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth2/token":
			r.ParseForm()
			if r.PostForm.Get("grant_type") != "authorization_code" {
				t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
			}
			if r.PostForm.Get("code") != "code-1" {
				t.Errorf("code = %q", r.PostForm.Get("code"))
			}
			json.NewEncoder(w).Encode(map[string]string{"access_token": "tok-1"})
		case "/users/@me":
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("auth header = %q", got)
			}
			json.NewEncoder(w).Encode(Identity{ID: "99", Username: "candidate"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	o := NewOAuth(srv.URL, "client-1", "secret", "https://portal.example/callback")

	token, err := o.ExchangeCode(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if token != "tok-1" {
		t.Errorf("token = %q", token)
	}

	id, err := o.FetchIdentity(context.Background(), token)
	if err != nil {
		t.Fatalf("identity fetch failed: %v", err)
	}
	if id.ID != "99" || id.Username != "candidate" {
		t.Errorf("identity = %+v", id)
	}
}

func TestExchangeCodeRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	o := NewOAuth(srv.URL, "client-1", "secret", "https://portal.example/callback")
	if _, err := o.ExchangeCode(context.Background(), "bad-code"); err == nil {
		t.Fatal("expected error on rejected code")
	}
}
