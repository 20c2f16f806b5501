package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Params is a plain-object payload. It becomes the query string of a GET
// and a JSON body otherwise.
type Params map[string]any

// Multipart is a pre-encoded multipart/form-data body. It is never query
// encoded and is sent with its own boundary content type.
type Multipart struct {
	body        []byte
	contentType string
}

// File is one file part of a Multipart body.
type File struct {
	Field   string
	Name    string
	Content []byte
}

// NewMultipart encodes fields (in key order) followed by files.
func NewMultipart(fields map[string]string, files ...File) (*Multipart, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, fmt.Errorf("failed to write field %s: %w", k, err)
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.Field, f.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to create file part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, fmt.Errorf("failed to write file part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart body: %w", err)
	}

	return &Multipart{body: buf.Bytes(), contentType: w.FormDataContentType()}, nil
}

func (m *Multipart) ContentType() string { return m.contentType }

func (m *Multipart) Reader() io.Reader { return bytes.NewReader(m.body) }

// encodeQuery renders payload as a query string, skipping nil and "" values.
func encodeQuery(payload any) (string, error) {
	params, err := asParams(payload)
	if err != nil {
		return "", err
	}

	values := url.Values{}
	for k, v := range params {
		if isBlank(v) {
			continue
		}
		values.Set(k, stringify(v))
	}
	return values.Encode(), nil
}

// encodeBody returns the request body and its content type for a non-GET.
func encodeBody(payload any) (io.Reader, string, error) {
	if isBlank(payload) {
		return nil, "", nil
	}
	if m, ok := payload.(*Multipart); ok {
		return m.Reader(), m.contentType, nil
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode payload: %w", err)
	}
	return bytes.NewReader(b), "application/json", nil
}

func asParams(payload any) (map[string]any, error) {
	switch p := payload.(type) {
	case Params:
		return p, nil
	case map[string]any:
		return p, nil
	case map[string]string:
		out := make(map[string]any, len(p))
		for k, v := range p {
			out[k] = v
		}
		return out, nil
	case url.Values:
		out := make(map[string]any, len(p))
		for k := range p {
			out[k] = p.Get(k)
		}
		return out, nil
	}

	// structs go through their JSON shape so query keys match body keys
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("%w: %T is not an object", ErrInvalidPayload, payload)
	}
	return out, nil
}

func isBlank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isBlank(rv.Elem().Interface())
	case reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	case fmt.Stringer:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, item := range t {
			parts[i] = stringify(item)
		}
		return strings.Join(parts, ",")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return stringify(rv.Elem().Interface())
	}
	return fmt.Sprint(v)
}
