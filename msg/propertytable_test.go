package msg

import (
	"encoding/binary"
	"testing"

	"github.com/oxmsg/msgkit/mapi"
)

func TestBuildPropertyTableFixedLengthEntry(t *testing.T) {
	props := []mapi.Property{
		{Tag: mapi.PidTagImportance, Value: mapi.Int32(1)},
	}
	table, streams, err := buildPropertyTable(rowHeader(), props, mapi.Windows1252())
	if err != nil {
		t.Fatalf("buildPropertyTable: %v", err)
	}
	if len(streams) != 0 {
		t.Fatalf("expected no variable streams for a fixed-length property")
	}
	if len(table) != 8+16 {
		t.Fatalf("table length = %d, want %d", len(table), 8+16)
	}

	entry := table[8:]
	gotTag := binary.LittleEndian.Uint32(entry[0:])
	if gotTag != mapi.PidTagImportance.Combined() {
		t.Errorf("entry tag = %08X, want %08X", gotTag, mapi.PidTagImportance.Combined())
	}
	gotFlags := binary.LittleEndian.Uint32(entry[4:])
	if gotFlags != propertyTableFlags {
		t.Errorf("entry flags = %08X, want %08X", gotFlags, propertyTableFlags)
	}
	gotValue := binary.LittleEndian.Uint32(entry[8:])
	if gotValue != 1 {
		t.Errorf("entry value = %d, want 1", gotValue)
	}
}

func TestBuildPropertyTableVariableLengthSizeMatchesStream(t *testing.T) {
	props := []mapi.Property{
		{Tag: mapi.PidTagSubject, Value: mapi.Unicode("Hello")},
	}
	table, streams, err := buildPropertyTable(messageHeader(0, 0), props, mapi.Windows1252())
	if err != nil {
		t.Fatalf("buildPropertyTable: %v", err)
	}
	if len(streams) != 1 {
		t.Fatalf("expected exactly one variable stream, got %d", len(streams))
	}

	entry := table[32:]
	declaredSize := binary.LittleEndian.Uint32(entry[8:])
	if int(declaredSize) != len(streams[0].data) {
		t.Errorf("declared size %d != stream length %d", declaredSize, len(streams[0].data))
	}
	wantName := "__substg1.0_" + mapi.PidTagSubject.StreamSuffix()
	if streams[0].name != wantName {
		t.Errorf("stream name = %q, want %q", streams[0].name, wantName)
	}
}

func TestBuildPropertyTableSortsByTagAscending(t *testing.T) {
	props := []mapi.Property{
		{Tag: mapi.PidTagLastModificationTime, Value: mapi.FileTime(0)},
		{Tag: mapi.PidTagMessageClass, Value: mapi.Unicode("IPM.Note")},
		{Tag: mapi.PidTagSubject, Value: mapi.Unicode("x")},
	}
	table, _, err := buildPropertyTable(messageHeader(0, 0), props, mapi.Windows1252())
	if err != nil {
		t.Fatalf("buildPropertyTable: %v", err)
	}

	entries := table[32:]
	var last uint32
	for i := 0; i+16 <= len(entries); i += 16 {
		tag := binary.LittleEndian.Uint32(entries[i:])
		if i > 0 && tag <= last {
			t.Fatalf("tags not strictly ascending at entry %d", i/16)
		}
		last = tag
	}
}

func TestMessageHeaderLayout(t *testing.T) {
	h := messageHeader(3, 2)
	if len(h) != 32 {
		t.Fatalf("len(messageHeader) = %d, want 32", len(h))
	}
	if got := binary.LittleEndian.Uint32(h[8:]); got != 3 {
		t.Errorf("next_recipient_id = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(h[12:]); got != 2 {
		t.Errorf("next_attachment_id = %d, want 2", got)
	}
	if got := binary.LittleEndian.Uint32(h[16:]); got != 3 {
		t.Errorf("recipient_count = %d, want 3", got)
	}
	if got := binary.LittleEndian.Uint32(h[20:]); got != 2 {
		t.Errorf("attachment_count = %d, want 2", got)
	}
}

func TestRowHeaderIsEightZeroBytes(t *testing.T) {
	h := rowHeader()
	if len(h) != 8 {
		t.Fatalf("len(rowHeader) = %d, want 8", len(h))
	}
	for _, b := range h {
		if b != 0 {
			t.Fatalf("rowHeader is not all zero: % X", h)
		}
	}
}
