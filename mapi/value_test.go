package mapi

import (
	"bytes"
	"errors"
	"testing"
)

func TestFromUnixSecondsEpoch(t *testing.T) {
	want := []byte{0x00, 0x80, 0x3E, 0xD5, 0xDE, 0xB1, 0x9D, 0x01}
	ft := FromUnixSeconds(0, 0)
	got, err := ft.Encode(Windows1252())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("FILETIME(unix epoch) = % X, want % X", got, want)
	}
}

func TestUnicodeTerminator(t *testing.T) {
	got, err := Unicode("Hello").Encode(Windows1252())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(got) < 2 || got[len(got)-2] != 0x00 || got[len(got)-1] != 0x00 {
		t.Fatalf("Unicode encoding does not end in 00 00: % X", got)
	}
	want := []byte{'H', 0, 'e', 0, 'l', 0, 'l', 0, 'o', 0, 0, 0}
	if !bytes.Equal(got, want) {
		t.Fatalf("Unicode(\"Hello\") = % X, want % X", got, want)
	}
}

func TestString8Terminator(t *testing.T) {
	got, err := String8("Hello").Encode(Windows1252())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if got[len(got)-1] != 0x00 {
		t.Fatalf("STRING8 encoding does not end in a single 00: % X", got)
	}
	if bytes.Count(got, []byte{0}) != 1 {
		t.Fatalf("STRING8 encoding should have exactly one NUL: % X", got)
	}
}

func TestString8LossyReplacement(t *testing.T) {
	// U+2603 SNOWMAN cannot be represented in Windows-1252.
	got, err := String8("a☃b").Encode(Windows1252())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []byte{'a', '?', 'b', 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("lossy STRING8 = % X, want % X", got, want)
	}
}

func TestString8StrictFails(t *testing.T) {
	_, err := String8("a☃b").Encode(Windows1252().Strict())
	if !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected ErrEncoding, got %v", err)
	}
}

func TestBinaryPassthrough(t *testing.T) {
	payload := []byte{0x01, 0x02, 0x03, 0xFF}
	got, err := Bin(payload).Encode(Windows1252())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("Bin.Encode = % X, want % X", got, payload)
	}
}

func TestFixedLengthClassification(t *testing.T) {
	cases := []struct {
		typ   Type
		fixed bool
	}{
		{TypeInteger16, true},
		{TypeInteger32, true},
		{TypeBoolean, true},
		{TypeInteger64, true},
		{TypeSysTime, true},
		{TypeString8, false},
		{TypeUnicode, false},
		{TypeBinary, false},
	}
	for _, c := range cases {
		if got := c.typ.IsFixedLength(); got != c.fixed {
			t.Errorf("%v.IsFixedLength() = %v, want %v", c.typ, got, c.fixed)
		}
	}
}

func TestTagCombinedAndStreamSuffix(t *testing.T) {
	tag := Tag{ID: 0x0037, Type: TypeUnicode}
	if got, want := tag.Combined(), uint32(0x0037001F); got != want {
		t.Errorf("Combined() = 0x%08X, want 0x%08X", got, want)
	}
	if got, want := tag.StreamSuffix(), "0037001F"; got != want {
		t.Errorf("StreamSuffix() = %q, want %q", got, want)
	}
}
