// Package mapi implements the MAPI property model used to describe the
// contents of an Outlook message: property tags, the eight wire types this
// library knows how to encode, FILETIME conversion, and the simplified
// EntryID/search-key encodings MS-OXMSG expects on sender and recipient rows.
//
// None of this package talks to a MAPI store, a network, or Outlook itself —
// it only knows how to turn typed Go values into the bytes MS-OXPROPS and
// MS-OXCDATA describe.
package mapi

import "fmt"

// Type is a MAPI property type code (the low 16 bits of a property tag).
type Type uint16

// Property types this package can encode. Values match MS-OXCDATA section 2.11.1.
const (
	TypeInteger16 Type = 0x0002
	TypeInteger32 Type = 0x0003
	TypeBoolean   Type = 0x000B
	TypeInteger64 Type = 0x0014
	TypeSysTime   Type = 0x0040
	TypeString8   Type = 0x001E
	TypeUnicode   Type = 0x001F
	TypeBinary    Type = 0x0102
)

// IsFixedLength reports whether a property of this type is stored inline in
// the 8-byte value field of a __properties_version1.0 entry, as opposed to a
// dedicated __substg1.0_ stream.
func (t Type) IsFixedLength() bool {
	switch t {
	case TypeInteger16, TypeInteger32, TypeBoolean, TypeInteger64, TypeSysTime:
		return true
	default:
		return false
	}
}

func (t Type) String() string {
	switch t {
	case TypeInteger16:
		return "PT_I2"
	case TypeInteger32:
		return "PT_LONG"
	case TypeBoolean:
		return "PT_BOOLEAN"
	case TypeInteger64:
		return "PT_I8"
	case TypeSysTime:
		return "PT_SYSTIME"
	case TypeString8:
		return "PT_STRING8"
	case TypeUnicode:
		return "PT_UNICODE"
	case TypeBinary:
		return "PT_BINARY"
	default:
		return fmt.Sprintf("PT_0x%04X", uint16(t))
	}
}

// Tag is a MAPI property tag: a 16-bit property ID paired with a 16-bit
// property type. Combined() lays them out id-high/type-low, matching
// MS-OXMSG's (id<<16 | type) wire tag and the __substg1.0_IIIITTTT /
// __substg1.0_<8-hex> stream-naming convention.
type Tag struct {
	ID   uint16
	Type Type
}

// Combined returns the 32-bit tag as written into a property table entry:
// (id << 16) | type.
func (t Tag) Combined() uint32 {
	return uint32(t.ID)<<16 | uint32(t.Type)
}

// StreamSuffix returns the 8 uppercase hex digits used to name this tag's
// variable-length stream: id then type, e.g. Tag{0x0037, TypeUnicode}.StreamSuffix()
// == "0037001F".
func (t Tag) StreamSuffix() string {
	return fmt.Sprintf("%04X%04X", t.ID, uint16(t.Type))
}

func (t Tag) String() string {
	return fmt.Sprintf("0x%04X/%s", t.ID, t.Type)
}
