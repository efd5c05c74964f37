// Package wire reads and writes the small subset of HTTP/1.1 the service
// speaks: one request line, ignored headers, an optional body and a literal
// response written before the connection is closed.
package wire

import (
	"strings"
)

// Separator splits the head of a request from its body
const Separator = "\r\n\r\n"

// Request is the parsed form of a raw request buffer
type Request struct {
	Method string
	Path   string
	Body   string

	// Params holds named path segments filled in by the router
	Params map[string]string
}

// Param returns a named path segment or an empty string
func (r *Request) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// Parse turns a raw buffer into a Request. It never fails: invalid UTF-8 is
// replaced with U+FFFD, missing tokens become empty strings and a buffer
// without a blank line has an empty body.
func Parse(raw []byte) *Request {
	text := strings.ToValidUTF8(string(raw), "�")

	head, body, found := strings.Cut(text, Separator)
	if !found {
		body = ""
	}

	requestLine, _, _ := strings.Cut(head, "\r\n")
	fields := strings.Fields(requestLine)

	req := &Request{Body: body}
	if len(fields) > 0 {
		req.Method = fields[0]
	}
	if len(fields) > 1 {
		req.Path = fields[1]
	}

	return req
}
