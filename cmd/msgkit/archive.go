package main

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"fmt"
	"os"

	"github.com/howeyc/gopass"
)

// passphrasePrompter caches one passphrase per prompter so a message with
// several encrypted attachments only prompts once, the way ruler.go's gopass
// call prompts once for the mailbox password rather than per-request. build
// uses one prompter; batch creates one per message.
type passphrasePrompter struct {
	cached []byte
	have   bool
}

func (p *passphrasePrompter) get() ([]byte, error) {
	if p.have {
		return p.cached, nil
	}
	fmt.Fprint(os.Stderr, "Attachment archive passphrase: ")
	pass, err := gopass.GetPasswd()
	if err != nil {
		return nil, fmt.Errorf("reading passphrase: %w", err)
	}
	p.cached, p.have = pass, true
	return pass, nil
}

// decryptAttachment reverses the AES-256-GCM sealing that produced an
// encrypted attachment's on-disk bytes: the 12-byte nonce prefixes the
// ciphertext, and the key is SHA-256 of the passphrase. This is the
// password-protected-archive import path; it decrypts a single file already
// wrapped this way rather than any particular archive container format.
func decryptAttachment(ciphertext []byte, passphrase []byte) ([]byte, error) {
	key := sha256.Sum256(passphrase)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("building cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("building AEAD: %w", err)
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext shorter than nonce")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	plain, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting attachment: %w", err)
	}
	return plain, nil
}
