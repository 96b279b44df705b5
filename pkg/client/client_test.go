package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid config",
			config:      Config{UserAgent: "horizon-xml/1.0 (test@example.com)", Timeout: time.Second},
			expectError: false,
		},
		{
			name:        "zero timeout",
			config:      Config{UserAgent: "horizon-xml/1.0"},
			expectError: false,
		},
		{
			name:        "empty user agent",
			config:      Config{Timeout: time.Second},
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name:        "negative timeout",
			config:      Config{UserAgent: "horizon-xml/1.0", Timeout: -time.Second},
			expectError: true,
			errorMsg:    "timeout must be >= 0 (got -1s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got nil")
					return
				}
				if tt.errorMsg != "" && err.Error() != tt.errorMsg {
					t.Errorf("Error message = %q, want %q", err.Error(), tt.errorMsg)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
					return
				}
				if client == nil {
					t.Error("Client is nil")
				}
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	userAgent := "horizon-xml/1.0"
	cfg := DefaultConfig(userAgent)

	if cfg.UserAgent != userAgent {
		t.Errorf("UserAgent = %q, want %q", cfg.UserAgent, userAgent)
	}
	if cfg.Timeout <= 0 {
		t.Errorf("Timeout = %s, should be > 0", cfg.Timeout)
	}
}

func TestClassifyError(t *testing.T) {
	client := &Client{logger: zerolog.Nop()}

	tests := []struct {
		name       string
		statusCode int
		err        error
		expected   ErrorClass
	}{
		{"network error", 0, io.EOF, ErrorClassNetwork},
		{"client error 404", 404, nil, ErrorClassClient},
		{"client error 403", 403, nil, ErrorClassClient},
		{"server error 500", 500, nil, ErrorClassServer},
		{"server error 503", 503, nil, ErrorClassServer},
		{"success 200", 200, nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *http.Response
			if tt.statusCode > 0 {
				resp = &http.Response{StatusCode: tt.statusCode}
			}

			result := client.classifyError(resp, tt.err)
			if result != tt.expected {
				t.Errorf("classifyError() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestGet_UserAgentAndBody(t *testing.T) {
	userAgentReceived := ""
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgentReceived = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/xml")
		w.Write([]byte(`<ok/>`))
	}))
	defer server.Close()

	cfg := DefaultConfig("horizon-xml/1.0 (test@example.com)")
	client, err := New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	body, err := client.Get(context.Background(), server.URL+"/Horizon/urlRequest.aw")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}

	if string(body) != "<ok/>" {
		t.Errorf("body = %q, want <ok/>", body)
	}
	if userAgentReceived != cfg.UserAgent {
		t.Errorf("User-Agent = %q, want %q", userAgentReceived, cfg.UserAgent)
	}
}

func TestGet_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client, _ := New(DefaultConfig("horizon-xml/1.0"))

	_, err := client.Get(context.Background(), server.URL+"/Horizon/urlRequest.aw")
	if err == nil {
		t.Fatal("expected error for 503 response")
	}

	var herr *HorizonError
	if !errors.As(err, &herr) {
		t.Fatalf("error %v is not a HorizonError", err)
	}
	if herr.StatusCode != http.StatusServiceUnavailable || herr.ErrorClass != ErrorClassServer {
		t.Errorf("HorizonError = %+v", herr)
	}
}

func TestGet_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client, _ := New(DefaultConfig("horizon-xml/1.0"))

	_, err := client.Get(context.Background(), url+"/Horizon/urlRequest.aw")
	if !errors.Is(err, ErrTransportFailure) {
		t.Fatalf("error = %v, want transport failure", err)
	}

	var herr *HorizonError
	if errors.As(err, &herr) && herr.ErrorClass != ErrorClassNetwork {
		t.Errorf("ErrorClass = %q, want network", herr.ErrorClass)
	}
}

func TestLogin_SessionCookie(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/Horizon/logonGuest.aw":
			http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "guest", Path: "/"})
			w.Write([]byte("<html/>"))
		case "/Horizon/urlRequest.aw":
			if c, err := r.Cookie("JSESSIONID"); err != nil || c.Value != "guest" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte("<ok/>"))
		}
	}))
	defer server.Close()

	client, _ := New(DefaultConfig("horizon-xml/1.0"))
	ctx := context.Background()

	if _, err := client.Get(ctx, server.URL+"/Horizon/urlRequest.aw"); err == nil {
		t.Fatal("expected query without session to fail")
	}

	if err := client.Login(ctx, server.URL+"/Horizon/logonGuest.aw?domain=horizondap_cowra"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if _, err := client.Get(ctx, server.URL+"/Horizon/urlRequest.aw"); err != nil {
		t.Errorf("Get() after login error = %v", err)
	}
}

func TestLogin_Failure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client, _ := New(DefaultConfig("horizon-xml/1.0"))

	err := client.Login(context.Background(), server.URL+"/Horizon/logonGuest.aw?domain=nope")
	if !errors.Is(err, ErrAuthenticationFailure) {
		t.Fatalf("Login() error = %v, want ErrAuthenticationFailure", err)
	}
	if !errors.Is(err, ErrTransportFailure) {
		t.Error("authentication failure should still wrap the transport error")
	}
}
