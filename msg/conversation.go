package msg

import (
	"encoding/binary"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/oxmsg/msgkit/mapi"
)

// ConversationIndexMode selects how ChildConversationIndex encodes a reply's
// 5-byte child block.
//
// The original tool this package's algorithms are grounded on appends five
// random bytes for every reply, rather than encoding the actual response
// time delta MS-OXCMSG 2.2.1.3 describes. Interoperating clients tolerate
// this, but a strict validator may not, so the two behaviors are gated
// explicitly instead of silently carried over.
type ConversationIndexMode int

const (
	// ConversationIndexLegacy appends five random bytes per reply, matching
	// the grounding source's behavior. This is the default: existing threads
	// built by either behavior remain byte-for-byte reproducible, and real
	// mail clients have never been observed to reject it.
	ConversationIndexLegacy ConversationIndexMode = iota
	// ConversationIndexStrict encodes a clamped response-time delta in the
	// child block's flags and delta fields, per MS-OXCMSG 2.2.1.3.
	ConversationIndexStrict
)

const conversationIndexRootSize = 22
const conversationIndexBlockSize = 5

// NewConversationIndex synthesizes a new 22-byte thread root: a 0x01 header
// byte, the five high-order bytes of now's FILETIME, and 16 bytes read from
// rnd as the thread's GUID.
func NewConversationIndex(now time.Time, rnd io.Reader) ([]byte, error) {
	ft := mapi.FromUnixSeconds(now.Unix(), int64(now.Nanosecond()))
	encoded, err := ft.Encode(mapi.Windows1252())
	if err != nil {
		return nil, fmt.Errorf("msg: encoding conversation index FILETIME: %w", err)
	}
	filetime := binary.LittleEndian.Uint64(encoded)

	index := make([]byte, conversationIndexRootSize)
	index[0] = 0x01
	highFive := filetime >> 24
	for i := 0; i < 5; i++ {
		index[1+i] = byte(highFive >> (8 * (4 - i)))
	}

	guid, err := uuid.NewRandomFromReader(rnd)
	if err != nil {
		return nil, fmt.Errorf("msg: reading conversation index GUID: %w", err)
	}
	copy(index[6:22], guid[:])
	return index, nil
}

// ChildConversationIndex appends a reply's 5-byte child block to parent,
// which must be a root (22 bytes) or already-extended (22 + 5k bytes) index.
func ChildConversationIndex(parent []byte, now time.Time, rnd io.Reader, mode ConversationIndexMode) ([]byte, error) {
	if len(parent) < conversationIndexRootSize || (len(parent)-conversationIndexRootSize)%conversationIndexBlockSize != 0 {
		return nil, invalidInput("conversation index parent has invalid length %d", len(parent))
	}

	child := make([]byte, len(parent), len(parent)+conversationIndexBlockSize)
	copy(child, parent)

	block := make([]byte, conversationIndexBlockSize)
	switch mode {
	case ConversationIndexStrict:
		ft := mapi.FromUnixSeconds(now.Unix(), int64(now.Nanosecond()))
		encoded, err := ft.Encode(mapi.Windows1252())
		if err != nil {
			return nil, fmt.Errorf("msg: encoding conversation index FILETIME: %w", err)
		}
		filetime := binary.LittleEndian.Uint64(encoded)
		var parentTime uint64 // the root header carries the high five bytes of its FILETIME
		for _, b := range parent[1:6] {
			parentTime = parentTime<<8 | uint64(b)
		}
		parentTime <<= 24
		var diff uint64
		if filetime > parentTime {
			diff = filetime - parentTime
		}
		delta := diff >> 18 // bits 18 and up of the tick difference
		if delta > 0x7FFFFFFF {
			delta = 0x7FFFFFFF // clamp to 31 bits
		}
		block[0] = 0x00 // sign/count flags: positive forward delta
		binary.BigEndian.PutUint32(block[1:], uint32(delta))
	case ConversationIndexLegacy:
		if _, err := io.ReadFull(rnd, block); err != nil {
			return nil, fmt.Errorf("msg: reading conversation index child block: %w", err)
		}
	default:
		return nil, invalidInput("unknown conversation index mode %d", mode)
	}

	return append(child, block...), nil
}
