package cfb

import (
	"encoding/binary"
	"io"
)

const (
	headerSize      = 512
	difatInlineSize = 109
)

var headerSignature = [8]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// writeHeader writes the fixed 512-byte MS-CFB header (2.2), describing a
// version-3 (512-byte sector) compound file with 64-byte mini sectors and a
// 4096-byte mini-stream cutoff.
func writeHeader(w io.Writer, rootDirSector uint32, fatSectorIDs []uint32, miniFATStart uint32, numMiniFATSectors int) error {
	buf := make([]byte, headerSize)

	copy(buf[0:8], headerSignature[:])
	// bytes 8-23: CLSID, zero for files not bound to a specific application
	binary.LittleEndian.PutUint16(buf[24:], 0x003E) // minor version
	binary.LittleEndian.PutUint16(buf[26:], 0x0003) // major version: 3
	binary.LittleEndian.PutUint16(buf[28:], 0xFFFE) // byte order: little-endian
	binary.LittleEndian.PutUint16(buf[30:], 9)       // sector shift: 2^9 = 512
	binary.LittleEndian.PutUint16(buf[32:], 6)       // mini sector shift: 2^6 = 64
	// bytes 34-39: reserved, zero
	binary.LittleEndian.PutUint32(buf[40:], 0) // number of directory sectors, 0 for v3
	binary.LittleEndian.PutUint32(buf[44:], uint32(len(fatSectorIDs)))
	binary.LittleEndian.PutUint32(buf[48:], rootDirSector)
	// bytes 52-55: transaction signature, unused
	binary.LittleEndian.PutUint32(buf[56:], miniStreamCutoff)
	if numMiniFATSectors > 0 {
		binary.LittleEndian.PutUint32(buf[60:], miniFATStart)
	} else {
		binary.LittleEndian.PutUint32(buf[60:], sectorEndOfChain)
	}
	binary.LittleEndian.PutUint32(buf[64:], uint32(numMiniFATSectors))
	binary.LittleEndian.PutUint32(buf[68:], sectorEndOfChain) // first DIFAT sector: none, all FAT sectors fit inline
	binary.LittleEndian.PutUint32(buf[72:], 0)                // number of DIFAT sectors beyond the inline 109

	for i := 0; i < difatInlineSize; i++ {
		off := 76 + i*4
		if i < len(fatSectorIDs) {
			binary.LittleEndian.PutUint32(buf[off:], fatSectorIDs[i])
		} else {
			binary.LittleEndian.PutUint32(buf[off:], sectorFree)
		}
	}

	_, err := w.Write(buf)
	return err
}
