package httpserver

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

var statusText = map[int]string{
	200: "OK",
	400: "Bad Request",
	401: "Unauthorized",
	404: "Not Found",
	405: "Method Not Allowed",
	500: "Internal Server Error",
}

func text(status int, body string) *Response {
	return &Response{Status: status, ContentType: "text/plain", Body: []byte(body)}
}

func jsonBody(status int, v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return text(500, "Internal Server Error")
	}
	return &Response{Status: status, ContentType: "application/json", Body: body}
}

// writeResponse serializes one response and always advertises a closing
// connection; every request/response cycle ends the connection server
// side.
func writeResponse(w io.Writer, resp *Response) error {
	reason, ok := statusText[resp.Status]
	if !ok {
		reason = "OK"
	}

	head := "HTTP/1.1 " + strconv.Itoa(resp.Status) + " " + reason + "\r\n" +
		"Content-Type: " + resp.ContentType + "\r\n" +
		"Content-Length: " + strconv.Itoa(len(resp.Body)) + "\r\n" +
		"Access-Control-Allow-Origin: *\r\n" +
		"Access-Control-Allow-Methods: GET, POST, OPTIONS\r\n" +
		"Access-Control-Allow-Headers: Content-Type\r\n" +
		"Connection: close\r\n" +
		"\r\n"

	if _, err := io.WriteString(w, head); err != nil {
		return fmt.Errorf("write response head: %w", err)
	}
	if _, err := w.Write(resp.Body); err != nil {
		return fmt.Errorf("write response body: %w", err)
	}
	return nil
}
