package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
)

// Transport adapts a fasthttp client to http.RoundTripper so that
// net/http based signers can sit on top of it.
type Transport struct {
	client *fasthttp.Client
}

func NewTransport() *Transport {
	return &Transport{
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (t *Transport) RoundTrip(r *http.Request) (*http.Response, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.URL.String())
	req.Header.SetMethod(r.Method)
	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		r.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		req.SetBody(body)
	}

	if err := r.Context().Err(); err != nil {
		return nil, err
	}

	deadline, ok := r.Context().Deadline()
	if ok {
		if err := t.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := t.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	body := append([]byte(nil), resp.Body()...)
	out := &http.Response{
		StatusCode:    resp.StatusCode(),
		Status:        fmt.Sprintf("%d %s", resp.StatusCode(), http.StatusText(resp.StatusCode())),
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        make(http.Header),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       r,
	}
	resp.Header.VisitAll(func(key, value []byte) {
		out.Header.Add(string(key), string(value))
	})

	return out, nil
}
