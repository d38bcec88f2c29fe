package mapi

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf16"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Sentinel errors for property encoding, per the error taxonomy this library
// defines for its callers.
var (
	// ErrUnsupportedType is returned when a caller-supplied property uses a
	// MAPI type this codec does not implement (e.g. PT_DOUBLE).
	ErrUnsupportedType = errors.New("mapi: unsupported property type")

	// ErrEncoding is returned when strict STRING8 encoding fails because the
	// chosen codepage cannot represent a character in the value.
	ErrEncoding = errors.New("mapi: value cannot be represented in the target codepage")
)

// CodePage selects the single-byte encoding used for STRING8 (PT_STRING8)
// values. The zero value is Windows-1252, the default MS-OXMSG codepage for
// legacy-compatible messages.
type CodePage struct {
	enc    encoding.Encoding
	strict bool
}

// Windows1252 is the default STRING8 codepage: lossy by default ('?' for
// unmappable runes), matching the original implementation's cp1252 encoder.
func Windows1252() CodePage {
	return CodePage{enc: charmap.Windows1252, strict: false}
}

// Strict returns a copy of cp that fails with ErrEncoding instead of
// substituting '?' for characters the codepage cannot represent.
func (cp CodePage) Strict() CodePage {
	cp.strict = true
	return cp
}

func (cp CodePage) encoding() encoding.Encoding {
	if cp.enc == nil {
		return charmap.Windows1252
	}
	return cp.enc
}

// Value is a typed MAPI property value. This package implements it for the
// eight types spec'd for this codec, as concrete wrapper types rather than
// runtime type tags. The interface's methods are exported, so other packages
// can implement it too; msg.Compose rejects extra properties whose type is
// not one of the eight with ErrUnsupportedType.
type Value interface {
	// Type reports the MAPI property type this value encodes as.
	Type() Type

	// Encode returns the on-wire bytes for this value. cp only affects
	// String8; every other type ignores it.
	Encode(cp CodePage) ([]byte, error)
}

// Int16 is PT_SHORT: a 16-bit signed integer, stored 2-byte LE and
// zero-padded to 8 bytes in the property table.
type Int16 int16

func (Int16) Type() Type { return TypeInteger16 }
func (v Int16) Encode(CodePage) ([]byte, error) {
	b := make([]byte, 2)
	binary.LittleEndian.PutUint16(b, uint16(v))
	return b, nil
}

// Int32 is PT_LONG: a 32-bit signed integer.
type Int32 int32

func (Int32) Type() Type { return TypeInteger32 }
func (v Int32) Encode(CodePage) ([]byte, error) {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b, nil
}

// Bool is PT_BOOLEAN: stored as a 2-byte LE 0/1.
type Bool bool

func (Bool) Type() Type { return TypeBoolean }
func (v Bool) Encode(CodePage) ([]byte, error) {
	b := make([]byte, 2)
	if v {
		binary.LittleEndian.PutUint16(b, 1)
	}
	return b, nil
}

// Int64 is PT_LONGLONG: a 64-bit signed integer.
type Int64 int64

func (Int64) Type() Type { return TypeInteger64 }
func (v Int64) Encode(CodePage) ([]byte, error) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b, nil
}

// FileTime is PT_SYSTIME: a raw 64-bit FILETIME value (100ns ticks since
// 1601-01-01 UTC). Use FromUnixSeconds to build one from wall-clock time.
type FileTime uint64

func (FileTime) Type() Type { return TypeSysTime }
func (v FileTime) Encode(CodePage) ([]byte, error) {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b, nil
}

// filetimeEpochOffsetSeconds is the number of seconds between the FILETIME
// epoch (1601-01-01 UTC) and the Unix epoch (1970-01-01 UTC).
const filetimeEpochOffsetSeconds = 11644473600

// filetimeTicksPerSecond is the number of 100ns ticks in one second.
const filetimeTicksPerSecond = 10_000_000

// FromUnixSeconds converts a Unix timestamp (seconds, nanoseconds) to a
// FILETIME value per spec §4.A:
// (unix_seconds + 11644473600) × 10_000_000 + sub-second-100ns-ticks.
func FromUnixSeconds(unixSeconds int64, nanoseconds int64) FileTime {
	ticks := (unixSeconds + filetimeEpochOffsetSeconds) * filetimeTicksPerSecond
	ticks += nanoseconds / 100
	return FileTime(ticks)
}

// String8 is PT_STRING8: a single-byte-codepage string, null-terminated in
// its own stream.
type String8 string

func (String8) Type() Type { return TypeString8 }

func (v String8) Encode(cp CodePage) ([]byte, error) {
	enc := cp.encoding()
	out, err := enc.NewEncoder().Bytes([]byte(string(v)))
	if err == nil {
		return append(out, 0x00), nil
	}
	if cp.strict {
		return nil, fmt.Errorf("%w: %v", ErrEncoding, err)
	}

	// Lossy: the bulk encode stopped at the first rune the codepage can't
	// represent. Re-encode rune by rune, substituting '?' for any rune that
	// individually fails, matching the default replacement behavior spec'd
	// for STRING8.
	var b []byte
	for _, r := range string(v) {
		if enc8, rErr := enc.NewEncoder().Bytes([]byte(string(r))); rErr == nil {
			b = append(b, enc8...)
		} else {
			b = append(b, '?')
		}
	}
	return append(b, 0x00), nil
}

// Unicode is PT_UNICODE: a UTF-16LE string, null-terminated in its own
// stream.
type Unicode string

func (Unicode) Type() Type { return TypeUnicode }

func (v Unicode) Encode(CodePage) ([]byte, error) {
	runes := utf16.Encode([]rune(string(v)))
	b := make([]byte, len(runes)*2+2)
	for i, r := range runes {
		binary.LittleEndian.PutUint16(b[i*2:], r)
	}
	return b, nil
}

// Bin is PT_BINARY: a raw byte payload, passed through verbatim.
type Bin []byte

func (Bin) Type() Type { return TypeBinary }
func (v Bin) Encode(CodePage) ([]byte, error) {
	return append([]byte(nil), v...), nil
}
