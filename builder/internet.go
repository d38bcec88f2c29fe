package builder

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/oxmsg/msgkit/msg"
)

// generateMessageID synthesizes an RFC 5322 Message-ID, grounded on
// original_source/pymsgkit/properties.py's generate_message_id: a
// timestamp paired with a random unique token, rather than a content hash,
// since the same message built twice with the same injected now and rnd
// must still produce the same ID (determinism requirement).
func generateMessageID(now time.Time, domain string, rnd io.Reader) (string, error) {
	if domain == "" {
		domain = "msgkit.local"
	}
	unique := make([]byte, 8)
	if _, err := io.ReadFull(rnd, unique); err != nil {
		return "", fmt.Errorf("builder: reading message-id entropy: %w", err)
	}
	return fmt.Sprintf("<%d.%s@%s>", now.UnixMicro(), hex.EncodeToString(unique), domain), nil
}

func domainOf(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[i+1:]
	}
	return ""
}

// generateInternetHeaders renders an RFC 5322-shaped header block for
// compatibility with readers that inspect PR_TRANSPORT_MESSAGE_HEADERS
// instead of (or in addition to) the MAPI properties, grounded on
// original_source/pymsgkit/properties.py's generate_internet_headers.
func generateInternetHeaders(subject, senderEmail, senderName string, to, cc []msg.Recipient, messageID string, date time.Time) string {
	var lines []string
	lines = append(lines, "Date: "+date.UTC().Format("Mon, 2 Jan 2006 15:04:05 -0700"))

	if senderName != "" {
		lines = append(lines, fmt.Sprintf("From: %q <%s>", senderName, senderEmail))
	} else {
		lines = append(lines, "From: "+senderEmail)
	}

	if len(to) > 0 {
		lines = append(lines, "To: "+formatAddressList(to))
	}
	if len(cc) > 0 {
		lines = append(lines, "Cc: "+formatAddressList(cc))
	}

	lines = append(lines,
		"Subject: "+subject,
		"Message-ID: "+messageID,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"Content-Transfer-Encoding: quoted-printable",
		"X-Mailer: msgkit",
	)

	return strings.Join(lines, "\r\n") + "\r\n"
}

func formatAddressList(recipients []msg.Recipient) string {
	parts := make([]string, len(recipients))
	for i, r := range recipients {
		if r.DisplayName != "" {
			parts[i] = fmt.Sprintf("%q <%s>", r.DisplayName, r.Address)
		} else {
			parts[i] = r.Address
		}
	}
	return strings.Join(parts, ", ")
}
