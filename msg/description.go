package msg

import (
	"fmt"

	"github.com/oxmsg/msgkit/mapi"
)

// RecipientKind is the recipient row's PidTagRecipientType value.
type RecipientKind int32

const (
	RecipientTo  RecipientKind = 1
	RecipientCc  RecipientKind = 2
	RecipientBcc RecipientKind = 3
)

func (k RecipientKind) valid() bool {
	switch k {
	case RecipientTo, RecipientCc, RecipientBcc:
		return true
	default:
		return false
	}
}

// Sender identifies the message's From/sent-representing identity. There is
// no mediated-API concept of "current mailbox owner" here: the caller sets
// whatever identity the synthesized message should carry.
type Sender struct {
	Address     string
	DisplayName string
	AddrType    string // defaults to "SMTP" when empty
}

// Recipient is one row of the message's recipient table. Index is assigned
// by MessageDescription in insertion order and determines both
// PidTagRowid and the recipient storage's zero-padded hex suffix.
type Recipient struct {
	Address     string
	DisplayName string
	AddrType    string // defaults to "SMTP" when empty
	Kind        RecipientKind
}

// Attachment is one file attached to the message. Index is assigned by
// MessageDescription in insertion order and determines the attachment
// storage's zero-padded hex suffix.
type Attachment struct {
	Filename  string
	Data      []byte
	MimeType  string // optional
	ContentID string // optional; implies Inline when non-empty and Inline is also set
	Inline    bool
	Method    int32 // defaults to mapi.AttachMethodByValue when zero
}

// MessageDescription is the root aggregate a façade hands to Compose. It is
// mutable while being populated and must not be mutated once Compose has
// been called on it.
type MessageDescription struct {
	Subject string
	Sender  Sender

	BodyText string
	BodyHTML []byte // optional; presence sets PidTagHTML alongside BodyText

	Recipients  []Recipient
	Attachments []Attachment

	// ConversationIndex, when non-nil, is written verbatim as PidTagConversationIndex.
	// Build one with NewConversationIndex or ChildConversationIndex.
	ConversationIndex []byte

	// InternetMessageID and TransportHeaders, when non-empty, are written as
	// PidTagInternetMessageID and PidTagTransportHeaders. A façade typically
	// derives both from Subject/Sender/Recipients before calling Compose.
	InternetMessageID string
	TransportHeaders  string

	// CodePage governs STRING8 encoding for any property the caller supplies
	// as mapi.String8. The zero value defaults to Windows1252 lossy mode.
	CodePage mapi.CodePage

	Unread bool // message flag PR_MESSAGE_FLAGS lacks MSGFLAG_READ when true
	Unsent bool // message flag PR_MESSAGE_FLAGS carries MSGFLAG_UNSENT when true

	// ExtraProperties are additional tagged properties attached to the
	// top-level message storage, encoded and ordered alongside the required
	// properties Compose generates.
	ExtraProperties []mapi.Property
}

func (m *MessageDescription) validate() error {
	if m.Sender.Address == "" {
		return invalidInput("sender address is required")
	}
	for i, r := range m.Recipients {
		if r.Address == "" {
			return invalidInput("recipient %d: address is required", i)
		}
		if !r.Kind.valid() {
			return invalidInput("recipient %d: kind %d out of range", i, r.Kind)
		}
	}
	for i, a := range m.Attachments {
		if a.Filename == "" {
			return invalidInput("attachment %d: filename is required", i)
		}
	}
	seen := make(map[uint32]struct{}, len(m.ExtraProperties))
	for _, p := range m.ExtraProperties {
		c := p.Tag.Combined()
		switch p.Tag.Type {
		case mapi.TypeInteger16, mapi.TypeInteger32, mapi.TypeBoolean, mapi.TypeInteger64,
			mapi.TypeSysTime, mapi.TypeString8, mapi.TypeUnicode, mapi.TypeBinary:
		default:
			return fmt.Errorf("%w: extra property tag %08X", ErrUnsupportedType, c)
		}
		if p.Value == nil || p.Value.Type() != p.Tag.Type {
			return invalidInput("extra property tag %08X: value type does not match tag type", c)
		}
		if _, dup := seen[c]; dup {
			return invalidInput("duplicate extra property tag %08X", c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

func (s Sender) addrType() string {
	if s.AddrType == "" {
		return "SMTP"
	}
	return s.AddrType
}

func (r Recipient) addrType() string {
	if r.AddrType == "" {
		return "SMTP"
	}
	return r.AddrType
}

func (a Attachment) method() int32 {
	if a.Method == 0 {
		return mapi.AttachMethodByValue
	}
	return a.Method
}
