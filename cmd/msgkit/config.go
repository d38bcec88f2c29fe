package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// SenderConfig describes the From / sent-representing identity in a YAML
// message description.
type SenderConfig struct {
	Address     string `yaml:"address"`
	DisplayName string `yaml:"display_name"`
	AddrType    string `yaml:"addr_type"`
}

// RecipientConfig describes one recipient row. Kind is "to", "cc", or "bcc"
// (case-insensitive); it defaults to "to" when empty.
type RecipientConfig struct {
	Address     string `yaml:"address"`
	DisplayName string `yaml:"display_name"`
	Kind        string `yaml:"kind"`
	AddrType    string `yaml:"addr_type"`
}

// AttachmentConfig describes one attachment's source file. When Encrypted is
// true, the file at Path is read as an AES-256-GCM ciphertext and build/batch
// prompt for the passphrase (see archive.go).
type AttachmentConfig struct {
	Path      string `yaml:"path"`
	Encrypted bool   `yaml:"encrypted"`
	MimeType  string `yaml:"mime_type"`
	ContentID string `yaml:"content_id"`
	Inline    bool   `yaml:"inline"`
}

// MessageConfig is the YAML schema for a single message passed to
// `msgkit build` or embedded in a BatchConfig.
type MessageConfig struct {
	Subject     string             `yaml:"subject"`
	Sender      SenderConfig       `yaml:"sender"`
	Body        string             `yaml:"body"`
	HTMLBody    string             `yaml:"html_body"`
	Recipients  []RecipientConfig  `yaml:"recipients"`
	Attachments []AttachmentConfig `yaml:"attachments"`
	Unread      bool               `yaml:"unread"`
	Unsent      bool               `yaml:"unsent"`
	Out         string             `yaml:"out"`
	SentAt      string             `yaml:"sent_at"` // RFC3339; overrides the default time (now for build, base_time plus offset for batch)
	InReplyTo   string             `yaml:"in_reply_to"`
}

// BatchConfig is the YAML schema for `msgkit batch`: a shared base time and
// output directory, plus the list of messages to synthesize, grounded on
// original_source/examples/batch_generation.py's flat message list.
type BatchConfig struct {
	BaseTime string          `yaml:"base_time"`
	OutDir   string          `yaml:"out_dir"`
	Messages []MessageConfig `yaml:"messages"`
}

func loadMessageConfig(path string) (MessageConfig, error) {
	var cfg MessageConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

func loadBatchConfig(path string) (BatchConfig, error) {
	var cfg BatchConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}
