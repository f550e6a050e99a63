package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
)

// maxBodyBytes bounds request bodies; a transaction is three short fields.
const maxBodyBytes = 64 << 10

// errBodyTooLarge rejects bodies over maxBodyBytes instead of parsing a prefix.
var errBodyTooLarge = errors.New("request body too large")

// RequestBodyParser reads a JSON or form-encoded body once. Values are
// returned exactly as sent; validation happens in the ledger.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.body, p.err = nil, errBodyTooLarge
	}
	return p
}

// Parse decodes the body as JSON when the content type or first byte says
// so, and as a form otherwise.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if isJSONContentType(p.contentType) || p.body[0] == '{' {
		p.err = p.decodeJSON()
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// decodeJSON keeps numbers as json.Number so amounts reach the ledger as sent.
func (p *RequestBodyParser) decodeJSON() error {
	dec := json.NewDecoder(bytes.NewReader(p.body))
	dec.UseNumber()
	data := make(map[string]any)
	if err := dec.Decode(&data); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("unexpected data after JSON object")
	}
	p.jsonData = data
	return nil
}

// Get returns a value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return stringValue(val)
		}
		return ""
	}
	if p.formData != nil {
		return p.formData.Get(key)
	}
	return ""
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts a decoded JSON value to the text a form would carry.
// Numbers keep their literal text, so 4.5 is still rejected as an amount and
// 9007199254740993 is not rounded.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

func isJSONContentType(ct string) bool {
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && mt == "application/json"
}

// addRequest is the body of POST /transactions.
type addRequest struct {
	Title    string
	Category string
	Amount   string
}

func parseAddRequest(r *http.Request) (addRequest, bool, error) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		return addRequest{}, isJSONContentType(p.contentType), err
	}
	return addRequest{
		Title:    p.Get("title"),
		Category: p.Get("category"),
		Amount:   p.Get("amount"),
	}, p.IsJSON(), nil
}
