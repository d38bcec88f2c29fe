// Package builder is the convenience façade described in spec.md §4.F: a
// fluent collector for subject/sender/recipients/attachments/threading that
// hands a fully populated description to the msg/cfb core for serialization.
// None of the byte-exactness requirements live here — this package only
// gathers fields and fills in the few derived ones (Message-ID and internet
// headers) that are easier to compute once, at the façade layer, than to
// re-derive inside every core operation.
package builder

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oxmsg/msgkit/cfb"
	"github.com/oxmsg/msgkit/mapi"
	"github.com/oxmsg/msgkit/msg"
)

// Message collects a message description for Build/Save/WriteTo. The zero
// value (via New) is ready to use.
type Message struct {
	desc msg.MessageDescription

	// ConversationIndexMode selects how ReplyTo encodes a reply's child
	// block; see msg.ConversationIndexMode.
	ConversationIndexMode msg.ConversationIndexMode
}

// New returns an empty Message ready for its setters.
func New() *Message {
	return &Message{}
}

// SetSubject sets the message subject.
func (b *Message) SetSubject(subject string) *Message {
	b.desc.Subject = subject
	return b
}

// SetSender sets the From / sent-representing identity. addrType defaults
// to "SMTP" when empty.
func (b *Message) SetSender(address, displayName, addrType string) *Message {
	b.desc.Sender = msg.Sender{Address: address, DisplayName: displayName, AddrType: addrType}
	return b
}

// SetBody sets the plain-text body.
func (b *Message) SetBody(text string) *Message {
	b.desc.BodyText = text
	return b
}

// SetHTMLBody sets the HTML body. Callers that want both renditions should
// also call SetBody; MS-OXMSG requires no particular relationship between
// the two beyond PR_MSG_BODY_NATIVE recording which one is canonical, which
// Compose sets automatically based on whether an HTML body is present.
func (b *Message) SetHTMLBody(html string) *Message {
	b.desc.BodyHTML = []byte(html)
	return b
}

// AddRecipient appends a recipient in insertion order. addrType defaults to
// "SMTP" when empty.
func (b *Message) AddRecipient(address, displayName string, kind msg.RecipientKind, addrType string) *Message {
	b.desc.Recipients = append(b.desc.Recipients, msg.Recipient{
		Address:     address,
		DisplayName: displayName,
		AddrType:    addrType,
		Kind:        kind,
	})
	return b
}

// AddAttachment appends an attachment in insertion order.
func (b *Message) AddAttachment(a msg.Attachment) *Message {
	b.desc.Attachments = append(b.desc.Attachments, a)
	return b
}

// SetConversationIndex sets a precomputed conversation index verbatim, e.g.
// one built with msg.NewConversationIndex for the first message in a thread.
func (b *Message) SetConversationIndex(index []byte) *Message {
	b.desc.ConversationIndex = index
	return b
}

// ReplyTo derives this message's conversation index from parent's, per
// b.ConversationIndexMode, using now and rnd for the child block's time
// delta or random padding (see msg.ChildConversationIndex).
func (b *Message) ReplyTo(parent []byte, now time.Time, rnd io.Reader) error {
	child, err := msg.ChildConversationIndex(parent, now, rnd, b.ConversationIndexMode)
	if err != nil {
		return err
	}
	b.desc.ConversationIndex = child
	return nil
}

// SetProperty attaches an additional tagged property to the top-level
// message storage. Compose rejects a duplicate tag at Build time.
func (b *Message) SetProperty(tag mapi.Tag, value mapi.Value) *Message {
	b.desc.ExtraProperties = append(b.desc.ExtraProperties, mapi.Property{Tag: tag, Value: value})
	return b
}

// SetUnread marks the message unread (PR_MESSAGE_FLAGS lacks MSGFLAG_READ).
func (b *Message) SetUnread(unread bool) *Message {
	b.desc.Unread = unread
	return b
}

// SetUnsent marks the message a draft (PR_MESSAGE_FLAGS carries MSGFLAG_UNSENT).
func (b *Message) SetUnsent(unsent bool) *Message {
	b.desc.Unsent = unsent
	return b
}

// SetCodePage overrides the STRING8 codepage; the default is
// mapi.Windows1252 (lossy).
func (b *Message) SetCodePage(cp mapi.CodePage) *Message {
	b.desc.CodePage = cp
	return b
}

// Build derives internet headers (when a sender and at least one TO
// recipient are set) and composes the full MS-OXMSG storage tree. now is
// the single injected "current time"; rnd supplies entropy for the
// Message-ID — both are threaded through explicitly so that building the
// same Message twice with the same now/rnd yields byte-identical output.
func (b *Message) Build(now time.Time, rnd io.Reader) (*cfb.Writer, error) {
	to := filterRecipients(b.desc.Recipients, msg.RecipientTo)
	if b.desc.Sender.Address != "" && len(to) > 0 {
		messageID, err := generateMessageID(now, domainOf(b.desc.Sender.Address), rnd)
		if err != nil {
			return nil, err
		}
		cc := filterRecipients(b.desc.Recipients, msg.RecipientCc)
		b.desc.InternetMessageID = messageID
		b.desc.TransportHeaders = generateInternetHeaders(
			b.desc.Subject, b.desc.Sender.Address, b.desc.Sender.DisplayName, to, cc, messageID, now,
		)
	}

	return msg.Compose(&b.desc, now)
}

// WriteTo builds the message and writes it to w, returning the byte count.
// Sink failures propagate unchanged (wrapped in msg.ErrSink), per spec.md
// §4.F's "propagates sink I/O failures unchanged."
func (b *Message) WriteTo(w io.Writer, now time.Time, rnd io.Reader) (int64, error) {
	writer, err := b.Build(now, rnd)
	if err != nil {
		return 0, err
	}
	n, err := writer.WriteTo(w)
	if err != nil {
		return n, fmt.Errorf("%w: %w", msg.ErrSink, err)
	}
	return n, nil
}

// Save builds the message and writes it to path. It writes to a sibling
// temporary file first and renames it into place, so a failure partway
// through never leaves a truncated .msg at path (spec.md §5: "a partially
// written sink MUST NOT be interpreted as a valid file").
func (b *Message) Save(path string, now time.Time, rnd io.Reader) error {
	writer, err := b.Build(now, rnd)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".msgkit-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", msg.ErrSink, err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := writer.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", msg.ErrSink, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", msg.ErrSink, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("%w: %v", msg.ErrSink, err)
	}
	return nil
}

func filterRecipients(recipients []msg.Recipient, kind msg.RecipientKind) []msg.Recipient {
	var out []msg.Recipient
	for _, r := range recipients {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}
