package openf1

import (
	"context"
	"net/url"
	"strconv"
)

// Params are the query parameters of one request.
type Params map[string]string

// Encode renders params URL-encoded and sorted by key, so two maps with the
// same pairs always encode identically.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	v := make(url.Values, len(p))
	for k, val := range p {
		v.Set(k, val)
	}
	return v.Encode()
}

// Key is the canonical cache key for an endpoint and params.
func Key(endpoint string, params Params) string {
	enc := params.Encode()
	if enc == "" {
		return endpoint
	}
	return endpoint + "?" + enc
}

// Int returns a single-pair parameter set with an integer value.
func Int(key string, v int) Params {
	return Params{key: strconv.Itoa(v)}
}

// WithInt returns a copy of p with key set to v. Zero values are omitted so
// optional filters can be passed straight through.
func (p Params) WithInt(key string, v int) Params {
	out := p.clone()
	if v != 0 {
		out[key] = strconv.Itoa(v)
	}
	return out
}

// With returns a copy of p with key set to v, omitting empty values.
func (p Params) With(key, v string) Params {
	out := p.clone()
	if v != "" {
		out[key] = v
	}
	return out
}

func (p Params) clone() Params {
	out := make(Params, len(p)+1)
	for k, v := range p {
		out[k] = v
	}
	return out
}

// GetterFunc adapts a function to Getter.
type GetterFunc func(ctx context.Context, endpoint string, params Params) ([]byte, error)

// Get calls f.
func (f GetterFunc) Get(ctx context.Context, endpoint string, params Params) ([]byte, error) {
	return f(ctx, endpoint, params)
}
