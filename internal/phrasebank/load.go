package phrasebank

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed data/phrases.yaml
var defaultData []byte

// file is the on-disk layout of a phrase bank.
type file struct {
	Learning   []Entry `yaml:"learning"`
	Evaluation []Entry `yaml:"evaluation"`
}

var (
	defaultOnce sync.Once
	defaultBank *Bank
)

// Default returns the built-in bank. It panics if the embedded data is
// invalid, which the package tests rule out.
func Default() *Bank {
	defaultOnce.Do(func() {
		b, err := Parse(bytes.NewReader(defaultData))
		if err != nil {
			panic(fmt.Sprintf("phrasebank: embedded data: %v", err))
		}
		defaultBank = b
	})
	return defaultBank
}

// Load reads a bank from a YAML file. An empty path returns Default.
func Load(path string) (*Bank, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open phrase bank: %w", err)
	}
	defer f.Close()

	b, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load phrase bank %s: %w", path, err)
	}
	return b, nil
}

// Parse decodes YAML from r and validates it. Unknown fields are rejected.
func Parse(r io.Reader) (*Bank, error) {
	var raw file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidBank)
		}
		return nil, fmt.Errorf("%w: decode: %w", ErrInvalidBank, err)
	}
	return New(raw.Learning, raw.Evaluation)
}

// Marshal renders a bank in the layout Parse accepts.
func Marshal(b *Bank) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(file{Learning: b.Entries(Learning), Evaluation: b.Entries(Evaluation)}); err != nil {
		return nil, fmt.Errorf("encode phrase bank: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode phrase bank: %w", err)
	}
	return buf.Bytes(), nil
}

// WithLearning returns a copy of b whose learning set is replaced by entries.
func (b *Bank) WithLearning(entries []Entry) (*Bank, error) {
	return New(entries, b.Entries(Evaluation))
}
