package wire

import (
	"strconv"
	"strings"
)

// Status lines
const (
	StatusOK            = "HTTP/1.1 200 OK"
	StatusBadRequest    = "HTTP/1.1 400 BAD REQUEST"
	StatusNotFound      = "HTTP/1.1 404 NOT FOUND"
	StatusInternalError = "HTTP/1.1 500 INTERNAL ERROR"
)

// headers sent with every response; the CORS trio lets browser clients on
// any origin call the API
var headers = []string{
	"Content-Type: application/json",
	"Access-Control-Allow-Origin: *",
	"Access-Control-Allow-Methods: GET, POST, PUT, DELETE",
	"Access-Control-Allow-Headers: Content-Type",
}

// Response is a status line and body pair
type Response struct {
	Status string
	Body   string
}

// OK returns a 200 response with the given body
func OK(body string) Response {
	return Response{Status: StatusOK, Body: body}
}

// NotFound returns a 404 response with the given body
func NotFound(body string) Response {
	return Response{Status: StatusNotFound, Body: body}
}

// InternalError returns a 500 response with the given body
func InternalError(body string) Response {
	return Response{Status: StatusInternalError, Body: body}
}

// BadRequest returns a 400 response with the given body
func BadRequest(body string) Response {
	return Response{Status: StatusBadRequest, Body: body}
}

// Code returns the numeric status code of the status line, or 0 if it
// cannot be parsed
func (r Response) Code() int {
	fields := strings.Fields(r.Status)
	if len(fields) < 2 {
		return 0
	}
	code, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return code
}

// Bytes renders the response exactly as it goes on the wire
func (r Response) Bytes() []byte {
	var b strings.Builder
	b.WriteString(r.Status)
	b.WriteString("\r\n")
	for _, h := range headers {
		b.WriteString(h)
		b.WriteString("\r\n")
	}
	b.WriteString("Content-Length: ")
	b.WriteString(strconv.Itoa(len(r.Body)))
	b.WriteString("\r\n\r\n")
	b.WriteString(r.Body)
	return []byte(b.String())
}
