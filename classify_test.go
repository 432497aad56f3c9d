package client

import (
	"errors"
	"strings"
	"testing"
)

func TestParseBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{"object", `{"data":[1,2]}`, ""},
		{"array", `[{"id":"1"}]`, ""},
		{"scalar", `"ok"`, ""},
		{"empty body", ``, msgJSONSyntax},
		{"truncated", `{"data":[1,2`, msgJSONSyntax},
		{"truncated object", `{"a":1`, msgJSONSyntax},
		{"syntax", `{"data":}`, msgJSONSyntax},
		{"mismatched array close", `[1}`, msgJSONUnderflow},
		{"mismatched object close", `{"a":[1]]`, msgJSONUnderflow},
		{"syntax before mismatch", `{"a":x]`, msgJSONSyntax},
		{"brackets inside string", `{"a":"]}\"[{"}`, ""},
		{"control character", "{\"name\":\"a\x01b\"}", msgJSONCtrlChar},
		{"invalid utf-8", "{\"name\":\"\xff\xfe\"}", msgJSONUTF8},
		{"deepest allowed", strings.Repeat("[", maxJSONDepth) + strings.Repeat("]", maxJSONDepth), ""},
		{"one level too deep", strings.Repeat("[", maxJSONDepth+1) + strings.Repeat("]", maxJSONDepth+1), msgJSONDepth},
		{"600 levels", strings.Repeat(`{"a":`, 600) + "1" + strings.Repeat("}", 600), msgJSONDepth},
		{"beyond decoder limit", strings.Repeat("[", 10050) + strings.Repeat("]", 10050), msgJSONDepth},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, apiErr := parseBody([]byte(tt.body))

			if tt.wantMessage == "" {
				if apiErr != nil {
					t.Errorf("expected no error, got %v", apiErr)
				}
				return
			}

			if apiErr == nil {
				t.Fatalf("expected error %q, got nil", tt.wantMessage)
			}

			if apiErr.Kind != KindService {
				t.Errorf("expected service error, got %v", apiErr.Kind)
			}

			if apiErr.Message != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, apiErr.Message)
			}

			if !errors.Is(apiErr, ErrMalformedResponse) {
				t.Error("expected error to wrap ErrMalformedResponse")
			}
		})
	}
}

func TestServerMessage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"message field", `{"message":"key revoked"}`, "key revoked"},
		{"empty message", `{"message":""}`, ""},
		{"no message field", `{"error":"x"}`, ""},
		{"non-string message", `{"message":42}`, ""},
		{"not json", `Forbidden`, ""},
		{"array", `["message"]`, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := serverMessage([]byte(tt.body)); got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseBody_Null(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`null`, " null\n"} {
		data, apiErr := parseBody([]byte(body))
		if apiErr != nil || data != nil {
			t.Errorf("parseBody(%q) = %v, %v; expected nil, nil", body, data, apiErr)
		}
	}
}

func TestClassify_TransportError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")

	resp, apiErr := classify(nil, cause)

	if resp != nil {
		t.Error("expected no response")
	}

	if apiErr == nil || apiErr.Kind != KindTransport {
		t.Fatalf("expected transport error, got %v", apiErr)
	}

	if !errors.Is(apiErr, cause) {
		t.Error("expected error to wrap the transport error")
	}
}
