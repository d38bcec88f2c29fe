package msg

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/oxmsg/msgkit/mapi"
)

// propertyTableFlags is written into every property-table entry's flags
// field: PROPATTR_READABLE | PROPATTR_WRITABLE.
const propertyTableFlags = 0x00000006

// variableStream is one __substg1.0_<TAG> stream awaiting emission
// alongside the property table that declares its size.
type variableStream struct {
	name string
	data []byte
}

// messageHeader builds the 32-byte header MS-OXMSG 2.4.1 prescribes for a
// top-level message's __properties_version1.0 stream.
func messageHeader(recipientCount, attachmentCount int) []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[8:], uint32(recipientCount))  // next_recipient_id
	binary.LittleEndian.PutUint32(buf[12:], uint32(attachmentCount)) // next_attachment_id
	binary.LittleEndian.PutUint32(buf[16:], uint32(recipientCount))
	binary.LittleEndian.PutUint32(buf[20:], uint32(attachmentCount))
	return buf
}

// rowHeader builds the 8-byte zero header a recipient or attachment
// storage's __properties_version1.0 stream carries.
func rowHeader() []byte {
	return make([]byte, 8)
}

// buildPropertyTable encodes props (sorted by ascending tag) into a
// __properties_version1.0 stream body prefixed by header, and returns the
// variable-length properties as separate streams to be added alongside it.
func buildPropertyTable(header []byte, props []mapi.Property, codePage mapi.CodePage) ([]byte, []variableStream, error) {
	sorted := make([]mapi.Property, len(props))
	copy(sorted, props)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Tag.Combined() < sorted[j].Tag.Combined()
	})

	table := make([]byte, len(header), len(header)+len(sorted)*16)
	copy(table, header)

	var streams []variableStream
	for _, p := range sorted {
		encoded, err := p.Value.Encode(codePage)
		if err != nil {
			return nil, nil, fmt.Errorf("msg: encoding property %s: %w", p.Tag, err)
		}

		entry := make([]byte, 16)
		binary.LittleEndian.PutUint32(entry[0:], p.Tag.Combined())
		binary.LittleEndian.PutUint32(entry[4:], propertyTableFlags)

		if p.Tag.Type.IsFixedLength() {
			copy(entry[8:16], encoded) // zero-padded to 8 bytes; encoded is never longer
		} else {
			binary.LittleEndian.PutUint32(entry[8:], uint32(len(encoded)))
			streams = append(streams, variableStream{
				name: "__substg1.0_" + p.Tag.StreamSuffix(),
				data: encoded,
			})
		}

		table = append(table, entry...)
	}

	return table, streams, nil
}
