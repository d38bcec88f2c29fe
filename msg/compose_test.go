package msg

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"
	"time"

	"github.com/oxmsg/msgkit/mapi"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
}

func TestComposeHelloWorld(t *testing.T) {
	m := &MessageDescription{
		Subject:  "Hello",
		Sender:   Sender{Address: "a@x.y"},
		BodyText: "Hello world",
		Recipients: []Recipient{
			{Address: "b@x.y", Kind: RecipientTo},
		},
	}

	w, err := Compose(m, fixedNow())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.Len()%512 != 0 {
		t.Fatalf("output length %d is not a sector multiple", buf.Len())
	}
}

func TestComposeRejectsMissingSender(t *testing.T) {
	m := &MessageDescription{Subject: "x"}
	if _, err := Compose(m, fixedNow()); err == nil {
		t.Fatalf("expected ErrInvalidInput for missing sender address")
	}
}

func TestComposeRejectsBadRecipientKind(t *testing.T) {
	m := &MessageDescription{
		Sender:     Sender{Address: "a@x.y"},
		Recipients: []Recipient{{Address: "b@x.y", Kind: 9}},
	}
	if _, err := Compose(m, fixedNow()); err == nil {
		t.Fatalf("expected ErrInvalidInput for recipient kind out of range")
	}
}

func TestComposeDeterministic(t *testing.T) {
	m := &MessageDescription{
		Subject:  "Hello",
		Sender:   Sender{Address: "a@x.y", DisplayName: "Alice"},
		BodyText: "Hello world",
		Recipients: []Recipient{
			{Address: "b@x.y", Kind: RecipientTo},
		},
	}

	var first, second bytes.Buffer
	w1, err := Compose(m, fixedNow())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if _, err := w1.WriteTo(&first); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	w2, err := Compose(m, fixedNow())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	if _, err := w2.WriteTo(&second); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Fatalf("two Compose calls on the same input produced different output")
	}
}

func TestMessagePropertiesTagOrderingAscending(t *testing.T) {
	m := &MessageDescription{
		Sender:   Sender{Address: "a@x.y"},
		Subject:  "Hello",
		BodyText: "body",
	}
	props := messageProperties(m, fixedNow())
	header := messageHeader(0, 0)
	table, _, err := buildPropertyTable(header, props, mapi.Windows1252())
	if err != nil {
		t.Fatalf("buildPropertyTable: %v", err)
	}

	entries := table[len(header):]
	var last uint32
	for i := 0; i+16 <= len(entries); i += 16 {
		tag := binary.LittleEndian.Uint32(entries[i:])
		if i > 0 && tag <= last {
			t.Fatalf("entry %d: tag %08X is not strictly greater than previous tag %08X", i/16, tag, last)
		}
		last = tag
	}
}

func TestComposeRequiredHousekeepingPropertiesPresentWithEmptySubjectAndBody(t *testing.T) {
	m := &MessageDescription{
		Sender: Sender{Address: "a@x.y"},
	}
	props := messageProperties(m, fixedNow())

	required := []mapi.Tag{
		mapi.PidTagMessageClass,
		mapi.PidTagMessageFlags,
		mapi.PidTagCreationTime,
		mapi.PidTagLastModificationTime,
	}
	for _, want := range required {
		found := false
		for _, p := range props {
			if p.Tag == want {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing required property %s", want)
		}
	}
}

func TestComposeInlineAttachmentProperties(t *testing.T) {
	props := attachmentProperties(0, Attachment{
		Filename:  "logo.png",
		Data:      []byte{0x89, 'P', 'N', 'G'},
		ContentID: "logo",
		Inline:    true,
	})

	var contentID, data mapi.Value
	for _, p := range props {
		switch p.Tag {
		case mapi.PidTagAttachContentID:
			contentID = p.Value
		case mapi.PidTagAttachDataBin:
			data = p.Value
		}
	}
	if contentID != mapi.Unicode("logo") {
		t.Errorf("content id = %v, want %q", contentID, "logo")
	}
	if !bytes.Equal([]byte(data.(mapi.Bin)), []byte{0x89, 'P', 'N', 'G'}) {
		t.Errorf("attach data mismatch")
	}
}

func TestSplitSubjectPrefix(t *testing.T) {
	prefix, normalized := splitSubjectPrefix("RE: project update")
	if prefix != "RE:" || normalized != "project update" {
		t.Errorf("splitSubjectPrefix = (%q, %q)", prefix, normalized)
	}

	prefix, normalized = splitSubjectPrefix("project update")
	if prefix != "" || normalized != "project update" {
		t.Errorf("splitSubjectPrefix on plain subject = (%q, %q)", prefix, normalized)
	}
}

func TestDisplayRecipientRollup(t *testing.T) {
	recipients := []Recipient{
		{Address: "b@x.y", DisplayName: "Bob", Kind: RecipientTo},
		{Address: "c@x.y", DisplayName: "Carol", Kind: RecipientTo},
		{Address: "d@x.y", DisplayName: "Dave", Kind: RecipientCc},
	}
	if got := joinRecipientNames(recipients, RecipientTo); got != "Bob; Carol" {
		t.Errorf("joinRecipientNames(To) = %q", got)
	}
	if got := joinRecipientNames(recipients, RecipientCc); got != "Dave" {
		t.Errorf("joinRecipientNames(Cc) = %q", got)
	}
	if got := joinRecipientNames(recipients, RecipientBcc); got != "" {
		t.Errorf("joinRecipientNames(Bcc) = %q, want empty", got)
	}
}

func TestRecipientStorageNaming(t *testing.T) {
	m := &MessageDescription{
		Sender: Sender{Address: "a@x.y"},
		Recipients: []Recipient{
			{Address: "b@x.y", Kind: RecipientTo},
			{Address: "c@x.y", Kind: RecipientCc},
		},
	}
	w, err := Compose(m, fixedNow())
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	// Storage names land in the directory sectors as UTF-16LE; a crude
	// substring check on the raw bytes is enough to confirm both recipient
	// storages made it into the directory without decoding the full tree.
	if !bytes.Contains(buf.Bytes(), utf16le("__recip_version1.0_#00000000")) {
		t.Errorf("missing recipient storage #00000000")
	}
	if !bytes.Contains(buf.Bytes(), utf16le("__recip_version1.0_#00000001")) {
		t.Errorf("missing recipient storage #00000001")
	}
}

func utf16le(s string) []byte {
	b := make([]byte, 0, len(s)*2)
	for _, r := range s {
		b = append(b, byte(r), 0)
	}
	return b
}

func TestExtensionOf(t *testing.T) {
	cases := map[string]string{
		"report.pdf": ".pdf",
		"archive":    "",
		"a.b.c":      ".c",
	}
	for in, want := range cases {
		if got := extensionOf(in); got != want {
			t.Errorf("extensionOf(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSubjectPrefixesMatchKnownSet(t *testing.T) {
	for _, p := range knownSubjectPrefixes {
		if !strings.HasSuffix(p, ":") && !strings.HasSuffix(p, " :") {
			t.Errorf("unexpected prefix shape: %q", p)
		}
	}
}
