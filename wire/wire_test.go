package wire

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		method string
		path   string
		body   string
	}{
		{
			name:   "post with headers and body",
			raw:    "POST /api/x/users HTTP/1.1\r\nHost: localhost\r\nContent-Type: application/json\r\n\r\n{\"name\":\"Ann\"}",
			method: "POST",
			path:   "/api/x/users",
			body:   `{"name":"Ann"}`,
		},
		{
			name:   "get without body",
			raw:    "GET /api/x/users/1 HTTP/1.1\r\nHost: localhost\r\n\r\n",
			method: "GET",
			path:   "/api/x/users/1",
			body:   "",
		},
		{
			name:   "no separator",
			raw:    "GET /api/x/users/1 HTTP/1.1",
			method: "GET",
			path:   "/api/x/users/1",
			body:   "",
		},
		{
			name:   "body keeps later blank lines",
			raw:    "PUT /a HTTP/1.1\r\n\r\nfirst\r\n\r\nsecond",
			method: "PUT",
			path:   "/a",
			body:   "first\r\n\r\nsecond",
		},
		{
			name:   "method only",
			raw:    "OPTIONS",
			method: "OPTIONS",
		},
		{
			name: "empty buffer",
			raw:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := Parse([]byte(tt.raw))
			require.NotNil(t, req)
			assert.Equal(t, tt.method, req.Method)
			assert.Equal(t, tt.path, req.Path)
			assert.Equal(t, tt.body, req.Body)
		})
	}
}

func TestParse_InvalidUTF8IsReplaced(t *testing.T) {
	raw := append([]byte("POST /api/x/users HTTP/1.1\r\n\r\n{\"name\":\""), 0xff, 0xfe)
	raw = append(raw, []byte("\"}")...)

	req := Parse(raw)
	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "{\"name\":\"�\"}", req.Body)
}

func TestRequest_Param(t *testing.T) {
	req := &Request{}
	assert.Empty(t, req.Param("id"))

	req.Params = map[string]string{"id": "7"}
	assert.Equal(t, "7", req.Param("id"))
}

func TestResponse_Bytes(t *testing.T) {
	out := string(OK(`{"id":1}`).Bytes())

	assert.True(t, strings.HasPrefix(out, "HTTP/1.1 200 OK\r\n"))
	assert.Contains(t, out, "Content-Type: application/json\r\n")
	assert.Contains(t, out, "Access-Control-Allow-Origin: *\r\n")
	assert.Contains(t, out, "Access-Control-Allow-Methods: GET, POST, PUT, DELETE\r\n")
	assert.Contains(t, out, "Access-Control-Allow-Headers: Content-Type\r\n")
	assert.Contains(t, out, "Content-Length: 8\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\n{\"id\":1}"))
}

func TestResponse_Code(t *testing.T) {
	assert.Equal(t, 200, OK("").Code())
	assert.Equal(t, 400, BadRequest("").Code())
	assert.Equal(t, 404, NotFound("").Code())
	assert.Equal(t, 500, InternalError("").Code())
	assert.Equal(t, 0, Response{Status: "garbage"}.Code())
}
