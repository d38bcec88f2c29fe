package builder

import (
	"bytes"
	"io"
	"math/rand"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/oxmsg/msgkit/mapi"
	"github.com/oxmsg/msgkit/msg"
)

func fixedNow() time.Time {
	return time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
}

func deterministicRand() io.Reader {
	return rand.New(rand.NewSource(1))
}

func TestS1HelloWorldSubjectStreamContent(t *testing.T) {
	m := New().
		SetSender("a@x.y", "", "").
		AddRecipient("b@x.y", "", msg.RecipientTo, "").
		SetBody("Hello world").
		SetSubject("Hello")

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf, fixedNow(), deterministicRand()); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	want := utf16le("Hello") // PR_SUBJECT's UTF-16LE bytes, NUL-terminated stream follows
	if !bytes.Contains(buf.Bytes(), want) {
		t.Fatalf("subject stream content not found in output")
	}
}

func TestS2TwoRecipientsInlineAttachment(t *testing.T) {
	m := New().
		SetSender("a@x.y", "", "").
		SetSubject("Logo").
		SetHTMLBody("<p>hi</p>").
		AddRecipient("b@x.y", "", msg.RecipientTo, "").
		AddRecipient("c@x.y", "", msg.RecipientCc, "").
		AddAttachment(msg.Attachment{
			Filename:  "logo.png",
			Data:      []byte{0x89, 'P', 'N', 'G', 1, 2, 3},
			ContentID: "logo",
			Inline:    true,
		})

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf, fixedNow(), deterministicRand()); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	for _, want := range []string{"__recip_version1.0_#00000000", "__recip_version1.0_#00000001", "__attach_version1.0_#00000000"} {
		if !bytes.Contains(buf.Bytes(), utf16le(want)) {
			t.Errorf("missing storage %q", want)
		}
	}
	if !bytes.Contains(buf.Bytes(), []byte{0x89, 'P', 'N', 'G', 1, 2, 3}) {
		t.Errorf("attachment payload not found verbatim")
	}
}

func TestS3ReplyConversationIndex(t *testing.T) {
	root, err := msg.NewConversationIndex(fixedNow(), deterministicRand())
	if err != nil {
		t.Fatalf("NewConversationIndex: %v", err)
	}

	reply := New().SetSender("a@x.y", "", "")
	if err := reply.ReplyTo(root, fixedNow().Add(time.Hour), deterministicRand()); err != nil {
		t.Fatalf("ReplyTo: %v", err)
	}
	if len(reply.desc.ConversationIndex) < 27 {
		t.Fatalf("child conversation index too short: %d bytes", len(reply.desc.ConversationIndex))
	}
	if !bytes.Equal(reply.desc.ConversationIndex[:22], root) {
		t.Fatalf("child conversation index does not begin with the parent's 22-byte prefix")
	}
}

func TestS6EmptySubjectAndBodyStillProducesRequiredProperties(t *testing.T) {
	m := New().SetSender("a@x.y", "", "")

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf, fixedNow(), deterministicRand()); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if buf.Len()%512 != 0 {
		t.Fatalf("output is not sector-aligned")
	}
	if !bytes.Contains(buf.Bytes(), utf16le("IPM.Note")) {
		t.Fatalf("message class IPM.Note not present")
	}
}

func TestBuildOmitsInternetHeadersWithoutRecipients(t *testing.T) {
	m := New().SetSender("a@x.y", "", "").SetSubject("no recipients")
	if _, err := m.Build(fixedNow(), deterministicRand()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.desc.InternetMessageID != "" {
		t.Errorf("expected no Message-ID without a TO recipient")
	}
}

func TestBuildGeneratesInternetHeadersWithToRecipient(t *testing.T) {
	m := New().
		SetSender("a@x.y", "Alice", "").
		SetSubject("hi").
		AddRecipient("b@x.y", "Bob", msg.RecipientTo, "")

	if _, err := m.Build(fixedNow(), deterministicRand()); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if m.desc.InternetMessageID == "" {
		t.Fatalf("expected a generated Message-ID")
	}
	if !strings.Contains(m.desc.TransportHeaders, "Subject: hi") {
		t.Fatalf("transport headers missing subject line: %q", m.desc.TransportHeaders)
	}
	if !strings.Contains(m.desc.TransportHeaders, `"Bob" <b@x.y>`) {
		t.Fatalf("transport headers missing To line: %q", m.desc.TransportHeaders)
	}
}

func TestSetPropertyRejectsDuplicateTagAtBuild(t *testing.T) {
	m := New().SetSender("a@x.y", "", "").
		SetProperty(mapi.Tag{ID: 0x7001, Type: mapi.TypeInteger32}, mapi.Int32(1)).
		SetProperty(mapi.Tag{ID: 0x7001, Type: mapi.TypeInteger32}, mapi.Int32(2))

	if _, err := m.Build(fixedNow(), deterministicRand()); err == nil {
		t.Fatalf("expected an error for a duplicate extra property tag")
	}
}

func TestSaveWritesFileAtomically(t *testing.T) {
	m := New().SetSender("a@x.y", "", "").SetBody("hi")
	dir := t.TempDir()
	path := dir + "/test.msg"

	if err := m.Save(path, fixedNow(), deterministicRand()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".msgkit-") {
			t.Fatalf("leftover temp file: %s", e.Name())
		}
	}
}

func utf16le(s string) []byte {
	b := make([]byte, 0, len(s)*2)
	for _, r := range s {
		b = append(b, byte(r), 0)
	}
	return b
}
