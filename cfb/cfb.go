// Package cfb writes the OLE Compound File Binary container (MS-CFB) that
// backs Outlook .msg files: a FAT-allocated sector stream with a parallel
// mini-stream for small streams and a directory tree of storages and
// streams.
//
// The writer builds a purely logical tree in memory (AddStorage/AddStream)
// and only performs sector allocation and header/FAT/directory serialization
// when WriteTo is called — grounded on the two-phase approach in
// original_source/pymsgkit/cfb.py (CFBWriter.add_storage/add_stream followed
// by a single _write_to_stream pass).
package cfb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// Sector markers, per MS-CFB 2.1.
const (
	sectorMaxRegular uint32 = 0xFFFFFFFA
	sectorDIFAT      uint32 = 0xFFFFFFFC
	sectorFAT        uint32 = 0xFFFFFFFD
	sectorEndOfChain uint32 = 0xFFFFFFFE
	sectorFree       uint32 = 0xFFFFFFFF
)

const (
	sectorSize        = 512
	miniSectorSize    = 64
	miniStreamCutoff  = 4096
	fatEntriesPerSect = sectorSize / 4
)

// ErrCapacityExceeded is returned when the container would need more sectors
// than a 32-bit sector index can address, or more FAT sectors than the 109
// that fit inline in the header (DIFAT sector chaining is not implemented).
var ErrCapacityExceeded = errors.New("cfb: output exceeds MS-CFB v3 addressable space")

// Writer assembles a compound file's logical directory tree and serializes
// it to a valid MS-CFB v3 byte stream.
//
// The zero value is not usable; construct one with New. A Writer is not
// safe for concurrent use, and WriteTo must only be called once (it mutates
// directory entries with their final sector assignments).
type Writer struct {
	entries    []*directoryEntry
	streamData map[int][]byte

	fat        []uint32
	miniFAT    []uint32
	miniStream []byte // padded to miniSectorSize boundaries as it grows

	sectors [][]byte // physical sector contents, index == sector id

	// Logger receives diagnostic-only messages (sector and stream counts)
	// from WriteTo. A nil Logger (the zero value) falls back to
	// slog.Default(); it is never consulted for control flow.
	Logger *slog.Logger
}

// New returns a Writer containing only the root storage entry (directory ID 0).
func New() *Writer {
	w := &Writer{
		streamData: make(map[int][]byte),
	}
	w.entries = append(w.entries, newDirectoryEntry("Root Entry", entryTypeRoot))
	return w
}

func (w *Writer) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

// Root is the directory ID of the implicit root storage; pass it as the
// parent of top-level storages and streams.
const Root = 0

// AddStorage adds a storage (directory) entry under parent and returns its
// directory ID.
func (w *Writer) AddStorage(name string, parent int) int {
	return w.addEntry(newDirectoryEntry(name, entryTypeStorage), parent)
}

// AddStream adds a stream (leaf) entry under parent holding data and returns
// its directory ID. data is copied by reference and must not be mutated
// afterward.
func (w *Writer) AddStream(name string, data []byte, parent int) int {
	entry := newDirectoryEntry(name, entryTypeStream)
	entry.streamSize = uint64(len(data))
	did := w.addEntry(entry, parent)
	w.streamData[did] = data
	return did
}

func (w *Writer) addEntry(entry *directoryEntry, parent int) int {
	did := len(w.entries)
	w.entries = append(w.entries, entry)

	p := w.entries[parent]
	if p.child == noStream {
		p.child = uint32(did)
		return did
	}

	sibling := p.child
	for w.entries[sibling].rightSibling != noStream {
		sibling = w.entries[sibling].rightSibling
	}
	w.entries[sibling].rightSibling = uint32(did)
	return did
}

// allocateSectors splits data into sectorSize chunks (zero-padded in the
// last chunk), appends them to w.sectors, and chains them through w.fat.
// It returns the chain of sector ids, or nil if data is empty.
func (w *Writer) allocateSectors(data []byte) []uint32 {
	if len(data) == 0 {
		return nil
	}
	n := (len(data) + sectorSize - 1) / sectorSize
	chain := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		id := uint32(len(w.fat))
		chain = append(chain, id)

		start := i * sectorSize
		end := start + sectorSize
		if end > len(data) {
			end = len(data)
		}
		chunk := make([]byte, sectorSize)
		copy(chunk, data[start:end])
		w.sectors = append(w.sectors, chunk)

		if i < n-1 {
			w.fat = append(w.fat, id+1)
		} else {
			w.fat = append(w.fat, sectorEndOfChain)
		}
	}
	return chain
}

// allocateMiniSectors splits data into miniSectorSize chunks, appends them
// to the (still-growing) mini-stream container, and chains them through
// w.miniFAT. It returns the chain of mini-sector ids, or nil if data is
// empty.
func (w *Writer) allocateMiniSectors(data []byte) []uint32 {
	if len(data) == 0 {
		return nil
	}
	n := (len(data) + miniSectorSize - 1) / miniSectorSize
	chain := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		id := uint32(len(w.miniFAT))
		chain = append(chain, id)

		start := i * miniSectorSize
		end := start + miniSectorSize
		if end > len(data) {
			end = len(data)
		}
		chunk := make([]byte, miniSectorSize)
		copy(chunk, data[start:end])
		w.miniStream = append(w.miniStream, chunk...)

		if i < n-1 {
			w.miniFAT = append(w.miniFAT, id+1)
		} else {
			w.miniFAT = append(w.miniFAT, sectorEndOfChain)
		}
	}
	return chain
}

func padToSector(data []byte, pad byte) []byte {
	rem := len(data) % sectorSize
	if rem == 0 {
		return data
	}
	out := make([]byte, len(data)+(sectorSize-rem))
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = pad
	}
	return out
}

// WriteTo serializes the directory tree built so far as an MS-CFB v3 stream
// and writes it to dst, returning the number of bytes written. It implements
// io.WriterTo.
//
// Sector layout mirrors original_source/pymsgkit/cfb.py: every stream's data
// sectors (or mini-sectors, for streams under the mini-stream cutoff) are
// allocated first in directory-entry order, then the mini-stream container,
// then the directory stream, then the mini-FAT, and only then the FAT
// sectors that describe all of the above — the FAT's own size isn't known
// until everything it must describe has been allocated. Sector id assignment
// is exactly allocation order, so the bytes written to dst are sector 0,
// sector 1, ... in turn; MS-CFB readers locate a sector by id (a fixed
// header-size + id*sectorSize offset), not by which logical component wrote
// it, so this allocation-order layout is a valid compound file even though
// it differs from the component ordering narrated by the format overview.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	for did := 1; did < len(w.entries); did++ {
		data, ok := w.streamData[did]
		if !ok {
			continue
		}
		entry := w.entries[did]
		if len(data) < miniStreamCutoff {
			chain := w.allocateMiniSectors(data)
			if len(chain) > 0 {
				entry.startingSector = chain[0]
			}
		} else {
			chain := w.allocateSectors(data)
			if len(chain) > 0 {
				entry.startingSector = chain[0]
			}
		}
	}

	if len(w.miniStream) > 0 {
		chain := w.allocateSectors(w.miniStream)
		root := w.entries[Root]
		root.startingSector = chain[0]
		root.streamSize = uint64(len(w.miniStream))
	}

	dirData := make([]byte, 0, len(w.entries)*directoryEntrySize)
	for _, e := range w.entries {
		dirData = append(dirData, e.marshal()...)
	}
	dirData = padToSector(dirData, 0xFF)
	dirChain := w.allocateSectors(dirData)

	miniFATStart := sectorEndOfChain
	numMiniFATSectors := 0
	if len(w.miniFAT) > 0 {
		miniFATData := make([]byte, len(w.miniFAT)*4)
		for i, v := range w.miniFAT {
			binary.LittleEndian.PutUint32(miniFATData[i*4:], v)
		}
		miniFATData = padToSector(miniFATData, 0xFF)
		chain := w.allocateSectors(miniFATData)
		miniFATStart = chain[0]
		numMiniFATSectors = len(chain)
	}

	// The FAT must also describe its own sectors, so the sector count is a
	// fixed point of n == ceil((baseLen+n)/fatEntriesPerSect) rather than a
	// single division of the pre-FAT length: appending n FAT sectors grows
	// w.fat by n entries, which can itself push the required sector count
	// past n if baseLen was already a multiple of fatEntriesPerSect.
	baseLen := len(w.fat)
	numFATSectors := 0
	for {
		next := (baseLen + numFATSectors + fatEntriesPerSect - 1) / fatEntriesPerSect
		if next == numFATSectors {
			break
		}
		numFATSectors = next
	}

	fatSectorIDs := make([]uint32, 0, numFATSectors)
	for i := 0; i < numFATSectors; i++ {
		id := uint32(baseLen + i)
		fatSectorIDs = append(fatSectorIDs, id)
		w.fat = append(w.fat, sectorFAT)
	}

	if err := checkCapacity(len(w.sectors) + numFATSectors); err != nil {
		return 0, err
	}
	if len(fatSectorIDs) > difatInlineSize {
		// original_source/pymsgkit/cfb.py has no DIFAT sector chain either; it
		// silently drops FAT sector ids past the 109 that fit inline, which
		// would corrupt the file. We refuse instead.
		return 0, fmt.Errorf("%w: %d FAT sectors need DIFAT chaining, which is unimplemented", ErrCapacityExceeded, len(fatSectorIDs))
	}

	cw := &countingWriter{w: dst}

	if err := writeHeader(cw, dirChain[0], fatSectorIDs, miniFATStart, numMiniFATSectors); err != nil {
		return cw.n, err
	}

	for _, sector := range w.sectors {
		if _, err := cw.Write(sector); err != nil {
			return cw.n, err
		}
	}

	fatData := make([]byte, numFATSectors*fatEntriesPerSect*4)
	for i := range fatData {
		fatData[i] = 0xFF // default every unused slot to FREESECT
	}
	for i, v := range w.fat {
		binary.LittleEndian.PutUint32(fatData[i*4:], v)
	}
	for i := 0; i < numFATSectors; i++ {
		if _, err := cw.Write(fatData[i*sectorSize : (i+1)*sectorSize]); err != nil {
			return cw.n, err
		}
	}

	w.logger().Debug("cfb: wrote compound file",
		"sectors", len(w.sectors)+numFATSectors,
		"fat_sectors", numFATSectors,
		"mini_fat_sectors", numMiniFATSectors,
		"directory_entries", len(w.entries),
		"bytes", cw.n,
	)
	return cw.n, nil
}

func checkCapacity(totalSectors int) error {
	if uint64(totalSectors) >= uint64(sectorMaxRegular) {
		return fmt.Errorf("%w: %d sectors", ErrCapacityExceeded, totalSectors)
	}
	return nil
}

// countingWriter wraps an io.Writer to track total bytes written, so WriteTo
// can report its byte count even when an underlying write fails partway
// through.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	if err != nil {
		return n, fmt.Errorf("cfb: sink write failed: %w", err)
	}
	return n, nil
}
