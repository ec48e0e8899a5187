package coap

import (
	"testing"

	"grimm.is/glacic/internal/parsers/http"
)

func buildGetMessage(uriSegments []string, querySegments []string) []byte {
	// Header: ver=1, type=NON(1), tkl=0 -> byte0 = 0b01_01_0000 = 0x50
	data := []byte{0x50, 0x01, 0x00, 0x00}

	optionNum := 0
	writeOption := func(num int, value []byte) {
		delta := num - optionNum
		optionNum = num
		length := len(value)
		if length >= 13 {
			// Lengths 13..268 use nibble 13 plus one extension byte (bias 13).
			data = append(data, byte(delta<<4)|13, byte(length-13))
		} else {
			data = append(data, byte(delta<<4)|byte(length))
		}
		data = append(data, value...)
	}
	for _, seg := range uriSegments {
		writeOption(OptionURIPath, []byte(seg))
	}
	for _, seg := range querySegments {
		writeOption(OptionURIQuery, []byte(seg))
	}
	return data
}

func TestParseMessageGetWithPathAndQuery(t *testing.T) {
	data := buildGetMessage([]string{"oic", "res"}, []string{"rt=x.com.samsung.provisioninginfo"})
	msg := ParseMessage(data, len(data))
	if msg.Type != NonConfirmable {
		t.Fatalf("type = %v", msg.Type)
	}
	if msg.Method != http.Get {
		t.Fatalf("method = %v", msg.Method)
	}
	want := "/oic/res?rt=x.com.samsung.provisioninginfo"
	if msg.URI != want {
		t.Fatalf("uri = %q want %q", msg.URI, want)
	}
}

func TestParseMessageNoOptions(t *testing.T) {
	data := []byte{0x40, 0x01, 0x00, 0x00}
	msg := ParseMessage(data, len(data))
	if msg.URI != "" {
		t.Fatalf("uri = %q", msg.URI)
	}
}
