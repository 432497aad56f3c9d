package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

const (
	pathIsAlive       = "/api/isalive"
	pathParts         = "/api/parts"
	pathCategories    = "/api/categories"
	pathCategory      = "/api/category/"
	pathAttributes    = "/api/attributes"
	pathManufacturers = "/api/manufacturers"
)

// IsAlive checks that the service answers.
func (c *Client) IsAlive(ctx context.Context) (*Response, error) {
	return c.Request(ctx, http.MethodGet, pathIsAlive, nil, nil)
}

// Search runs a part search with settings sent as the JSON body.
func (c *Client) Search(ctx context.Context, settings any) (*Response, error) {
	return c.Request(ctx, http.MethodPost, pathParts, nil, settings)
}

// SearchGet runs a part search with settings sent as query parameters.
func (c *Client) SearchGet(ctx context.Context, settings url.Values) (*Response, error) {
	return c.Request(ctx, http.MethodGet, pathParts, settings, nil)
}

func (c *Client) Categories(ctx context.Context) (*Response, error) {
	return c.Request(ctx, http.MethodGet, pathCategories, nil, nil)
}

func (c *Client) Category(ctx context.Context, id string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, pathCategory+url.PathEscape(id), nil, nil)
}

func (c *Client) Attributes(ctx context.Context, params url.Values) (*Response, error) {
	return c.Request(ctx, http.MethodGet, pathAttributes, params, nil)
}

func (c *Client) Manufacturers(ctx context.Context) (*Response, error) {
	return c.Request(ctx, http.MethodGet, pathManufacturers, nil, nil)
}

// CategoryID is a category identifier. The service sends ids either as JSON
// strings or as numbers.
type CategoryID string

func (id *CategoryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = CategoryID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("category id: %w", err)
		}
		*id = CategoryID(n.String())
		return nil
	}
}

// IsZero reports whether the id is absent. "0" counts as absent, since the
// service uses it for root categories.
func (id CategoryID) IsZero() bool {
	return id == "" || id == "0"
}

type Category struct {
	ID       CategoryID `json:"id"`
	ParentID CategoryID `json:"parent_id"`
	Name     string     `json:"name,omitempty"`
}

// CategoryRecord is the "data" object of a category response.
type CategoryRecord struct {
	Category Category `json:"Category"`

	// Raw is the complete "data" object, including related records.
	Raw json.RawMessage `json:"-"`
}

// CategoryAncestry returns the category with the given id followed by each
// of its ancestors, ending with the root category.
func (c *Client) CategoryAncestry(ctx context.Context, id string) ([]CategoryRecord, error) {
	var ancestry []CategoryRecord

	visited := map[CategoryID]bool{}
	next := CategoryID(id)

	for {
		visited[next] = true

		resp, err := c.Category(ctx, string(next))
		if err != nil {
			return nil, err
		}

		record, err := decodeCategoryRecord(resp)
		if err != nil {
			return nil, err
		}

		if !record.Category.ID.IsZero() {
			ancestry = append(ancestry, record)
		}

		parent := record.Category.ParentID
		if parent.IsZero() {
			return ancestry, nil
		}

		if visited[parent] {
			return nil, fmt.Errorf("%w: category %s", ErrCategoryCycle, parent)
		}

		next = parent
	}
}

func decodeCategoryRecord(resp *Response) (CategoryRecord, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := resp.Decode(&envelope); err != nil {
		return CategoryRecord{}, fmt.Errorf("failed to decode category response: %w", err)
	}

	var record CategoryRecord
	switch string(bytes.TrimSpace(envelope.Data)) {
	case "", "null", "[]":
		return record, nil
	}

	if err := json.Unmarshal(envelope.Data, &record); err != nil {
		return CategoryRecord{}, fmt.Errorf("failed to decode category response: %w", err)
	}
	record.Raw = envelope.Data

	return record, nil
}
