package client

import (
	"strings"
	"testing"
)

const testDate = "Mon, 02 Jan 2006 15:04:05 +0000"

func TestSign_KnownVectors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		host     string
		fullURL  string
		body     string
		expected string
	}{
		{
			name:     "http host",
			method:   "GET",
			host:     "http://api.example.com",
			fullURL:  "http://api.example.com/api/categories",
			expected: "a6bd2ed91d795509fe715faef3d6e1296a79c5c9920b029cabef1c4d07e94c26",
		},
		{
			name:     "https host with query and body",
			method:   "post",
			host:     "https://api.example.com",
			fullURL:  "https://api.example.com/api/parts?q=resistor",
			body:     `{"q":"resistor"}`,
			expected: "d648be124c55211f62d05b0ec49df3815266b7f2c07f1ae12ae058bf8f356f5b",
		},
		{
			name:     "bare host",
			method:   "GET",
			host:     "api.example.com",
			fullURL:  "https://api.example.com/api/isalive",
			expected: "add486bf00a841330ce331b677c87dacae602906fffb932f9021fa3d3e857a20",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Sign("s3cr3t", tt.method, tt.host, tt.fullURL, testDate, []byte(tt.body))

			if got != tt.expected {
				t.Errorf("expected signature %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestCanonicalString(t *testing.T) {
	t.Parallel()

	got := CanonicalString("post", "https://api.example.com", "https://api.example.com/api/parts?q=resistor", testDate, []byte(`{"q":"resistor"}`))

	expected := strings.Join([]string{
		"POST",
		"/api/parts",
		"q=resistor",
		"content-type:application/json",
		"date:" + testDate,
		"host:https://api.example.com",
		"content-type;date;host",
		"88e4100a8965589cf045389e826cf7b00cbdf7641eab82e8d4ad537162dc899e",
	}, "\n")

	if got != expected {
		t.Errorf("unexpected canonical string:\n%s\nexpected:\n%s", got, expected)
	}
}

func TestCanonicalString_HostPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		host         string
		fullURL      string
		expectedHost string
		expectedPath string
	}{
		{"http prefix stripped", "http://a.com", "http://a.com/api/parts", "host:a.com", "/api/parts"},
		{"https prefix kept", "https://a.com", "https://a.com/api/parts", "host:https://a.com", "/api/parts"},
		{"bare host keeps scheme in path", "a.com", "https://a.com/api/parts", "host:a.com", "https:///api/parts"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lines := strings.Split(CanonicalString("GET", tt.host, tt.fullURL, testDate, nil), "\n")

			if len(lines) != 8 {
				t.Fatalf("expected 8 lines, got %d", len(lines))
			}

			if lines[1] != tt.expectedPath {
				t.Errorf("expected path %q, got %q", tt.expectedPath, lines[1])
			}

			if lines[5] != tt.expectedHost {
				t.Errorf("expected %q, got %q", tt.expectedHost, lines[5])
			}
		})
	}
}

func TestCanonicalString_EmptyQuery(t *testing.T) {
	t.Parallel()

	lines := strings.Split(CanonicalString("GET", "http://a.com", "http://a.com/api/parts?", testDate, nil), "\n")

	if lines[1] != "/api/parts" || lines[2] != "" {
		t.Errorf("expected path=/api/parts and empty query, got %q and %q", lines[1], lines[2])
	}

	// sha256 of the empty string
	if lines[7] != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected empty body hash %s", lines[7])
	}
}

func TestSign_Deterministic(t *testing.T) {
	t.Parallel()

	first := Sign("secret", "GET", "http://a.com", "http://a.com/p?x=1", testDate, []byte("body"))
	second := Sign("secret", "GET", "http://a.com", "http://a.com/p?x=1", testDate, []byte("body"))

	if first != second {
		t.Errorf("expected identical signatures, got %s and %s", first, second)
	}

	if len(first) != 64 || strings.ToLower(first) != first {
		t.Errorf("expected 64 lowercase hex characters, got %s", first)
	}
}

func TestSign_FieldSensitivity(t *testing.T) {
	t.Parallel()

	base := Sign("secret", "POST", "http://a.com", "http://a.com/p?x=1", testDate, []byte("body"))

	tests := []struct {
		name      string
		signature string
	}{
		{"secret", Sign("secret2", "POST", "http://a.com", "http://a.com/p?x=1", testDate, []byte("body"))},
		{"method", Sign("secret", "PUT", "http://a.com", "http://a.com/p?x=1", testDate, []byte("body"))},
		{"path", Sign("secret", "POST", "http://a.com", "http://a.com/q?x=1", testDate, []byte("body"))},
		{"query", Sign("secret", "POST", "http://a.com", "http://a.com/p?x=2", testDate, []byte("body"))},
		{"host", Sign("secret", "POST", "http://b.com", "http://b.com/p?x=1", testDate, []byte("body"))},
		{"date", Sign("secret", "POST", "http://a.com", "http://a.com/p?x=1", "Tue, 03 Jan 2006 15:04:05 +0000", []byte("body"))},
		{"body", Sign("secret", "POST", "http://a.com", "http://a.com/p?x=1", testDate, []byte("bodz"))},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if tt.signature == base {
				t.Errorf("changing %s did not change the signature", tt.name)
			}
		})
	}
}

func TestSign_MethodCaseInsensitive(t *testing.T) {
	t.Parallel()

	lower := Sign("secret", "get", "http://a.com", "http://a.com/p", testDate, nil)
	upper := Sign("secret", "GET", "http://a.com", "http://a.com/p", testDate, nil)

	if lower != upper {
		t.Errorf("expected method to be upper-cased before signing")
	}
}
