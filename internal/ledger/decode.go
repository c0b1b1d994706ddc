package ledger

import (
	"encoding/hex"
	"strings"
	"unicode/utf8"
)

// Decoder turns a transaction payload into text. ok is false when the
// payload is empty or cannot be decoded.
type Decoder interface {
	Decode(payload string) (text string, ok bool)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(payload string) (string, bool)

// Decode calls f(payload).
func (f DecoderFunc) Decode(payload string) (string, bool) { return f(payload) }

// HexDecoder decodes hex input data (with or without 0x) as UTF-8 text.
type HexDecoder struct{}

// Decode implements Decoder.
func (HexDecoder) Decode(payload string) (string, bool) {
	s := strings.TrimSpace(payload)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return "", false
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}
