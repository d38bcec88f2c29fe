package msg

import (
	"fmt"
	"strings"
	"time"

	"github.com/oxmsg/msgkit/cfb"
	"github.com/oxmsg/msgkit/mapi"
)

// knownSubjectPrefixes are stripped from the subject to derive the
// normalized subject and conversation topic, mirroring the reply/forward
// prefixes original_source/examples/email_thread.py recognizes.
var knownSubjectPrefixes = []string{"RE:", "FW:", "Re:", "Fw:", "RE :", "FW :"}

func splitSubjectPrefix(subject string) (prefix, normalized string) {
	for _, p := range knownSubjectPrefixes {
		if strings.HasPrefix(subject, p) {
			return p, strings.TrimSpace(subject[len(p):])
		}
	}
	return "", subject
}

// Compose assembles the full MS-OXMSG storage tree for m into a fresh
// cfb.Writer, ready for WriteTo. now is the single injected "current time"
// used for every timestamp property, keeping output deterministic for a
// fixed input.
func Compose(m *MessageDescription, now time.Time) (*cfb.Writer, error) {
	if err := m.validate(); err != nil {
		return nil, err
	}

	codePage := m.CodePage
	if codePage == (mapi.CodePage{}) {
		codePage = mapi.Windows1252()
	}

	w := cfb.New()
	w.Logger = logger()

	props := messageProperties(m, now)
	if err := writeStorage(w, cfb.Root, messageHeader(len(m.Recipients), len(m.Attachments)), props, codePage); err != nil {
		return nil, err
	}

	writeNamedPropertyMap(w)

	for i, r := range m.Recipients {
		storage := w.AddStorage(fmt.Sprintf("__recip_version1.0_#%08X", i), cfb.Root)
		if err := writeStorage(w, storage, rowHeader(), recipientProperties(i, r), codePage); err != nil {
			return nil, err
		}
	}

	for i, a := range m.Attachments {
		storage := w.AddStorage(fmt.Sprintf("__attach_version1.0_#%08X", i), cfb.Root)
		if err := writeStorage(w, storage, rowHeader(), attachmentProperties(i, a), codePage); err != nil {
			return nil, err
		}
	}

	logger().Debug("msg: composed message storage tree",
		"recipients", len(m.Recipients),
		"attachments", len(m.Attachments),
		"extra_properties", len(m.ExtraProperties),
	)
	return w, nil
}

func writeStorage(w *cfb.Writer, storage int, header []byte, props []mapi.Property, codePage mapi.CodePage) error {
	table, streams, err := buildPropertyTable(header, props, codePage)
	if err != nil {
		return err
	}
	w.AddStream("__properties_version1.0", table, storage)
	for _, s := range streams {
		w.AddStream(s.name, s.data, storage)
	}
	return nil
}

// writeNamedPropertyMap emits the three minimal streams MS-OXMSG's named
// property mapping storage requires, empty but for one placeholder GUID and
// one placeholder entry; richer mapping is unneeded for any property this
// library writes, all of which are well-known (unnamed) MAPI properties.
func writeNamedPropertyMap(w *cfb.Writer) {
	storage := w.AddStorage("__nameid_version1.0", cfb.Root)
	w.AddStream("__substg1.0_00020102", make([]byte, 16), storage) // one all-zero GUID slot
	w.AddStream("__substg1.0_00030102", make([]byte, 8), storage)  // one placeholder entry
	w.AddStream("__substg1.0_00040102", nil, storage)              // no string-named properties
}

func messageFlags(m *MessageDescription) int32 {
	var flags int32
	if !m.Unread {
		flags |= mapi.MsgFlagRead
	}
	if m.Unsent {
		flags |= mapi.MsgFlagUnsent
	}
	if len(m.Attachments) > 0 {
		flags |= mapi.MsgFlagHasAttach
	}
	return flags
}

func messageProperties(m *MessageDescription, now time.Time) []mapi.Property {
	ft := mapi.FromUnixSeconds(now.Unix(), int64(now.Nanosecond()))
	prefix, normalized := splitSubjectPrefix(m.Subject)

	senderDisplay := m.Sender.DisplayName
	if senderDisplay == "" {
		senderDisplay = m.Sender.Address
	}

	props := []mapi.Property{
		{Tag: mapi.PidTagMessageClass, Value: mapi.Unicode("IPM.Note")},
		{Tag: mapi.PidTagSubject, Value: mapi.Unicode(m.Subject)},
		{Tag: mapi.PidTagSubjectPrefix, Value: mapi.Unicode(prefix)},
		{Tag: mapi.PidTagNormalizedSubject, Value: mapi.Unicode(normalized)},
		{Tag: mapi.PidTagConversationTopic, Value: mapi.Unicode(normalized)},
		{Tag: mapi.PidTagMessageFlags, Value: mapi.Int32(messageFlags(m))},
		{Tag: mapi.PidTagClientSubmitTime, Value: ft},
		{Tag: mapi.PidTagMessageDeliveryTime, Value: ft},
		{Tag: mapi.PidTagCreationTime, Value: ft},
		{Tag: mapi.PidTagLastModificationTime, Value: ft},
		{Tag: mapi.PidTagImportance, Value: mapi.Int32(1)},
		{Tag: mapi.PidTagPriority, Value: mapi.Int32(0)},
		{Tag: mapi.PidTagSensitivity, Value: mapi.Int32(0)},
		{Tag: mapi.PidTagHasAttach, Value: mapi.Bool(len(m.Attachments) > 0)},
		{Tag: mapi.PidTagMessageCodepage, Value: mapi.Int32(65001)},
		{Tag: mapi.PidTagInternetCPID, Value: mapi.Int32(65001)},
		{Tag: mapi.PidTagMessageLocaleID, Value: mapi.Int32(0x0409)},
		{Tag: mapi.PidTagStoreSupportMask, Value: mapi.Int32(mapi.StoreSupportMaskDefault)},

		{Tag: mapi.PidTagSenderName, Value: mapi.Unicode(senderDisplay)},
		{Tag: mapi.PidTagSenderEmailAddress, Value: mapi.Unicode(m.Sender.Address)},
		{Tag: mapi.PidTagSenderAddrType, Value: mapi.Unicode(m.Sender.addrType())},
		{Tag: mapi.PidTagSenderSearchKey, Value: mapi.Bin(mapi.SearchKey(m.Sender.addrType(), m.Sender.Address))},
		{Tag: mapi.PidTagSenderEntryID, Value: mapi.Bin(mapi.NewOneOffEntryID(m.Sender.Address, senderDisplay, m.Sender.addrType()))},
		{Tag: mapi.PidTagSentRepresentingName, Value: mapi.Unicode(senderDisplay)},
		{Tag: mapi.PidTagSentRepresentingEmailAddress, Value: mapi.Unicode(m.Sender.Address)},
		{Tag: mapi.PidTagSentRepresentingAddrType, Value: mapi.Unicode(m.Sender.addrType())},
		{Tag: mapi.PidTagSentRepresentingSearchKey, Value: mapi.Bin(mapi.SearchKey(m.Sender.addrType(), m.Sender.Address))},
		{Tag: mapi.PidTagSentRepresentingEntryID, Value: mapi.Bin(mapi.NewOneOffEntryID(m.Sender.Address, senderDisplay, m.Sender.addrType()))},

		{Tag: mapi.PidTagBody, Value: mapi.Unicode(m.BodyText)},
	}

	if m.BodyHTML != nil {
		props = append(props,
			mapi.Property{Tag: mapi.PidTagHTML, Value: mapi.Bin(m.BodyHTML)},
			mapi.Property{Tag: mapi.PidTagNativeBody, Value: mapi.Int32(2)}, // olBodyHTML, MS-OXCMSG 2.2.1.56.4
		)
	} else {
		props = append(props, mapi.Property{Tag: mapi.PidTagNativeBody, Value: mapi.Int32(1)}) // olBodyPlainText
	}

	if m.ConversationIndex != nil {
		props = append(props, mapi.Property{Tag: mapi.PidTagConversationIndex, Value: mapi.Bin(m.ConversationIndex)})
	}
	if m.InternetMessageID != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagInternetMessageID, Value: mapi.Unicode(m.InternetMessageID)})
	}
	if m.TransportHeaders != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagTransportHeaders, Value: mapi.Unicode(m.TransportHeaders)})
	}

	if to := joinRecipientNames(m.Recipients, RecipientTo); to != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagDisplayTo, Value: mapi.Unicode(to)})
	}
	if cc := joinRecipientNames(m.Recipients, RecipientCc); cc != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagDisplayCc, Value: mapi.Unicode(cc)})
	}
	if bcc := joinRecipientNames(m.Recipients, RecipientBcc); bcc != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagDisplayBcc, Value: mapi.Unicode(bcc)})
	}

	props = append(props, m.ExtraProperties...)
	return props
}

func joinRecipientNames(recipients []Recipient, kind RecipientKind) string {
	var names []string
	for _, r := range recipients {
		if r.Kind != kind {
			continue
		}
		name := r.DisplayName
		if name == "" {
			name = r.Address
		}
		names = append(names, name)
	}
	return strings.Join(names, "; ")
}

func recipientProperties(index int, r Recipient) []mapi.Property {
	display := r.DisplayName
	if display == "" {
		display = r.Address
	}
	return []mapi.Property{
		{Tag: mapi.PidTagObjectType, Value: mapi.Int32(mapi.MapiMailUser)},
		{Tag: mapi.PidTagDisplayType, Value: mapi.Int32(mapi.DtMailUser)},
		{Tag: mapi.PidTagRecipientType, Value: mapi.Int32(int32(r.Kind))},
		{Tag: mapi.PidTagRowid, Value: mapi.Int32(int32(index))},
		{Tag: mapi.PidTagEmailAddress, Value: mapi.Unicode(r.Address)},
		{Tag: mapi.PidTagAddrType, Value: mapi.Unicode(r.addrType())},
		{Tag: mapi.PidTagDisplayName, Value: mapi.Unicode(display)},
		{Tag: mapi.PidTagSearchKey, Value: mapi.Bin(mapi.SearchKey(r.addrType(), r.Address))},
		{Tag: mapi.PidTagEntryID, Value: mapi.Bin(mapi.NewOneOffEntryID(r.Address, display, r.addrType()))},
	}
}

func attachmentProperties(index int, a Attachment) []mapi.Property {
	props := []mapi.Property{
		{Tag: mapi.PidTagObjectType, Value: mapi.Int32(mapi.MapiAttach)},
		{Tag: mapi.PidTagAttachMethod, Value: mapi.Int32(a.method())},
		{Tag: mapi.PidTagAttachFilename, Value: mapi.Unicode(a.Filename)},
		{Tag: mapi.PidTagAttachLongFilename, Value: mapi.Unicode(a.Filename)},
		{Tag: mapi.PidTagAttachDataBin, Value: mapi.Bin(a.Data)},
		{Tag: mapi.PidTagAttachSize, Value: mapi.Int32(int32(len(a.Data)))},
		{Tag: mapi.PidTagAttachNum, Value: mapi.Int32(int32(index))},
	}

	if ext := extensionOf(a.Filename); ext != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagAttachExtension, Value: mapi.Unicode(ext)})
	}
	if a.MimeType != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagAttachMimeTag, Value: mapi.Unicode(a.MimeType)})
	}
	if a.ContentID != "" {
		props = append(props, mapi.Property{Tag: mapi.PidTagAttachContentID, Value: mapi.Unicode(a.ContentID)})
	}
	if a.Inline {
		props = append(props,
			mapi.Property{Tag: mapi.PidTagAttachFlags, Value: mapi.Int32(mapi.AttachFlagInvisibleInHTML)},
			mapi.Property{Tag: mapi.PidTagAttachmentHidden, Value: mapi.Bool(true)},
			mapi.Property{Tag: mapi.PidTagRenderingPosition, Value: mapi.Int32(-1)},
		)
	}

	return props
}

func extensionOf(filename string) string {
	i := strings.LastIndexByte(filename, '.')
	if i < 0 {
		return ""
	}
	return filename[i:]
}
