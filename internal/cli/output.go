package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	client "github.com/goodhill-solutions/goodhill-go-client"
	"github.com/goodhill-solutions/goodhill-go-client/internal/config"
)

// writeJSON writes v as indented JSON followed by a newline. Responses are
// written from their raw body so that number formatting is preserved.
func writeJSON(w io.Writer, v any) error {
	var raw []byte

	switch value := v.(type) {
	case *client.Response:
		raw = value.Body
	default:
		encoded, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("encode output: %w", err)
		}
		raw = encoded
	}

	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("format output: %w", err)
	}
	out.WriteByte('\n')

	_, err := out.WriteTo(w)
	return err
}

func parseJSONBody(body string) (json.RawMessage, error) {
	raw := json.RawMessage(strings.TrimSpace(body))
	if !json.Valid(raw) {
		return nil, ErrInvalidJSON
	}

	return raw, nil
}

// ancestryOutput returns the raw data objects of an ancestry, leaf first.
func ancestryOutput(records []client.CategoryRecord) []json.RawMessage {
	out := make([]json.RawMessage, 0, len(records))
	for _, record := range records {
		out = append(out, record.Raw)
	}

	return out
}

type configView struct {
	Path      string   `json:"path,omitempty"`
	APIKey    string   `json:"api_key"`
	APISecret string   `json:"api_secret"`
	Hosts     []string `json:"hosts"`
	CABundle  string   `json:"ca_bundle,omitempty"`
	Timeout   string   `json:"timeout,omitempty"`
}

func configOutput(cfg config.Config) configView {
	view := configView{
		Path:      cfg.Path,
		APIKey:    cfg.APIKey,
		APISecret: mask(cfg.APISecret),
		Hosts:     cfg.Hosts,
		CABundle:  cfg.CABundle,
	}

	if view.Hosts == nil {
		view.Hosts = []string{}
	}

	if cfg.Timeout > 0 {
		view.Timeout = cfg.Timeout.String()
	}

	return view
}

// mask hides all but the last four characters of a secret.
func mask(secret string) string {
	if secret == "" {
		return ""
	}

	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}

	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}
