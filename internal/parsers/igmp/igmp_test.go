package igmp

import "testing"

func TestParseMessageV2Report(t *testing.T) {
	data := []byte{byte(V2MembershipReport), 0x00, 0x00, 0x00, 224, 0, 0, 251}
	msg := ParseMessage(data)
	if msg.Version != 2 {
		t.Fatalf("version = %d", msg.Version)
	}
	want := [4]byte{224, 0, 0, 251}
	if msg.V2.GroupAddr != want {
		t.Fatalf("group addr = %v", msg.V2.GroupAddr)
	}
}

func TestParseMessageV3MembershipReportSingleGroup(t *testing.T) {
	data := []byte{
		byte(V3MembershipReport), 0x00, 0x00, 0x00,
		0x00, 0x00, 0x00, 0x01, // reserved(2) + checksum handled via offset2; numGroups at offset6-7 = 1
		4, 0, 0, 0, 224, 0, 0, 251, // group record: type=4, aux=0, numSources=0, addr
	}
	msg := ParseMessage(data)
	if msg.Version != 3 {
		t.Fatalf("version = %d", msg.Version)
	}
	if len(msg.V3Report.Groups) != 1 {
		t.Fatalf("expected 1 group, got %d", len(msg.V3Report.Groups))
	}
	g := msg.V3Report.Groups[0]
	if g.Type != 4 {
		t.Fatalf("group type = %d", g.Type)
	}
	want := [4]byte{224, 0, 0, 251}
	if g.GroupAddr != want {
		t.Fatalf("group addr = %v", g.GroupAddr)
	}
}

func TestParseMessageUnknownTypeLeavesVersionZero(t *testing.T) {
	msg := ParseMessage([]byte{0x00, 0, 0, 0})
	if msg.Version != 0 {
		t.Fatalf("expected version 0 for unhandled type, got %d", msg.Version)
	}
}
