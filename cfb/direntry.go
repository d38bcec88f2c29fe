package cfb

import (
	"encoding/binary"
	"unicode/utf16"
)

// entryType is a CFB directory entry's object type, per MS-CFB 2.6.1.
type entryType byte

const (
	entryTypeUnused  entryType = 0x00
	entryTypeStorage entryType = 0x01
	entryTypeStream  entryType = 0x02
	entryTypeRoot    entryType = 0x05
)

// noStream is the directory-ID sentinel for "no such entry" (left/right
// sibling or child fields that don't apply).
const noStream uint32 = 0xFFFFFFFF

// directoryEntrySize is the fixed on-disk size of one directory entry.
const directoryEntrySize = 128

// directoryEntry is one 128-byte MS-CFB directory entry (2.6.1). This
// writer never builds a balanced red-black tree: every entry is colored
// black and siblings are chained through rightSibling only, in insertion
// order (leftSibling is always noStream), which MS-CFB 2.6.4 readers accept
// even though it skips the red-black invariants.
type directoryEntry struct {
	name           string
	typ            entryType
	leftSibling    uint32
	rightSibling   uint32
	child          uint32
	startingSector uint32
	streamSize     uint64
}

func newDirectoryEntry(name string, typ entryType) *directoryEntry {
	return &directoryEntry{
		name:         name,
		typ:          typ,
		leftSibling:  noStream,
		rightSibling: noStream,
		child:        noStream,
	}
}

// marshal serializes the entry to its 128-byte on-disk form.
func (e *directoryEntry) marshal() []byte {
	buf := make([]byte, directoryEntrySize)

	nameUTF16 := utf16.Encode([]rune(e.name))
	if len(nameUTF16) > 31 {
		nameUTF16 = nameUTF16[:31] // MS-CFB: 32 UTF-16 code units incl. terminator, max.
	}
	for i, u := range nameUTF16 {
		binary.LittleEndian.PutUint16(buf[i*2:], u)
	}
	nameLenBytes := uint16(len(nameUTF16)*2 + 2) // include the NUL terminator

	binary.LittleEndian.PutUint16(buf[64:], nameLenBytes)
	buf[66] = byte(e.typ)
	buf[67] = 0x01 // color: always black, per the single-sibling-chain simplification
	binary.LittleEndian.PutUint32(buf[68:], e.leftSibling)
	binary.LittleEndian.PutUint32(buf[72:], e.rightSibling)
	binary.LittleEndian.PutUint32(buf[76:], e.child)
	// bytes 80-95: CLSID, left zero (storages only, and unused by readers here)
	// bytes 96-99: state bits, zero
	// bytes 100-107: creation time, zero
	// bytes 108-115: modification time, zero
	binary.LittleEndian.PutUint32(buf[116:], e.startingSector)
	binary.LittleEndian.PutUint64(buf[120:], e.streamSize)

	return buf
}
