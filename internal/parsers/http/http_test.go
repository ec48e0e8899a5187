package http

import "testing"

func TestParseMessageRequest(t *testing.T) {
	data := []byte("GET /gslb?tver=2&id=369215617&x=y HTTP/1.1\r\n")
	msg := ParseMessage(data, 80)
	if !msg.IsRequest {
		t.Fatal("expected request")
	}
	if msg.Method != Get {
		t.Fatalf("method = %v", msg.Method)
	}
	if msg.URI != "/gslb?tver=2&id=369215617&x=y" {
		t.Fatalf("uri = %q", msg.URI)
	}
}

func TestParseMessageNonPort80IsResponse(t *testing.T) {
	data := []byte("GET / HTTP/1.1\r\n")
	msg := ParseMessage(data, 8080)
	if msg.IsRequest {
		t.Fatal("expected non-request for non-80 destination port")
	}
	if msg.Method != Unknown {
		t.Fatalf("method = %v", msg.Method)
	}
}

func TestParseMessageUnrecognizedMethodIsResponse(t *testing.T) {
	data := []byte("HTTP/1.1 200 OK\r\n")
	msg := ParseMessage(data, 80)
	if msg.IsRequest {
		t.Fatal("expected response classification")
	}
}
