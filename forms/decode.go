package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/schema"
)

const maxMemory = 1 << 20

var decoder = newDecoder()

func newDecoder() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}

// Decode fills dst from the request body. URL-encoded and multipart bodies
// are read as form values; JSON objects are flattened to the same values so
// both go through one decoder.
func Decode(r *http.Request, dst any) error {
	values, err := requestValues(r)
	if err != nil {
		return err
	}
	if err := decoder.Decode(dst, values); err != nil {
		return fmt.Errorf("error decoding form: %w", err)
	}
	return nil
}

func requestValues(r *http.Request) (url.Values, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var body map[string]any
		if r.Body != nil {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("invalid JSON payload: %w", err)
			}
		}
		return jsonValues(body), nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxMemory); err != nil {
			return nil, fmt.Errorf("invalid multipart form: %w", err)
		}
		return r.PostForm, nil
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("invalid form: %w", err)
		}
		return r.PostForm, nil
	}
}

func jsonValues(body map[string]any) url.Values {
	values := url.Values{}
	for key, raw := range body {
		switch v := raw.(type) {
		case nil:
		case string:
			values.Set(key, v)
		case float64:
			values.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
		case bool:
			values.Set(key, strconv.FormatBool(v))
		default:
			values.Set(key, fmt.Sprint(v))
		}
	}
	return values
}
