package ssdp

import (
	"testing"

	"grimm.is/glacic/internal/netutil"
)

func TestParseMessageMSearchToMulticast(t *testing.T) {
	dst, _ := netutil.IPv4StrToNet(MulticastAddr)
	msg := ParseMessage([]byte("M-SEARCH * HTTP/1.1\r\n"), netutil.IPv4FromNet(dst))
	if !msg.IsRequest {
		t.Fatal("expected request when dst is multicast group")
	}
	if msg.Method != MSearch {
		t.Fatalf("method = %v", msg.Method)
	}
}

func TestParseMessageNotifyUnicastIsNotRequest(t *testing.T) {
	dst, _ := netutil.IPv4StrToNet("192.168.1.2")
	msg := ParseMessage([]byte("NOTIFY * HTTP/1.1\r\n"), netutil.IPv4FromNet(dst))
	if msg.IsRequest {
		t.Fatal("expected non-request for unicast destination")
	}
	if msg.Method != Notify {
		t.Fatalf("method = %v", msg.Method)
	}
}

func TestParseMethodUnknown(t *testing.T) {
	if ParseMethod([]byte("HTTP/1.1 200 OK")) != Unknown {
		t.Fatal("expected unknown method")
	}
}
