package dataset

import (
	"bytes"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported by DetectEncoding
const (
	EncodingASCII   = "ascii"
	EncodingUTF8    = "utf-8"
	EncodingUTF8BOM = "UTF-8-SIG"
	EncodingUTF16LE = "UTF-16LE"
	EncodingUTF16BE = "UTF-16BE"
	EncodingCP1252  = "windows-1252"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding guesses the character encoding of raw CSV bytes. Byte order
// marks win; otherwise the data is ascii or utf-8 when it validates, and
// windows-1252 as the single-byte fallback.
func DetectEncoding(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(data, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(data, bomUTF16BE):
		return EncodingUTF16BE
	}

	ascii := true
	for _, b := range data {
		if b >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return EncodingASCII
	}
	if utf8.Valid(data) {
		return EncodingUTF8
	}
	return EncodingCP1252
}

func decoderFor(name string) (encoding.Encoding, error) {
	switch name {
	case EncodingASCII, EncodingUTF8:
		return nil, nil
	case EncodingUTF8BOM:
		return unicode.UTF8BOM, nil
	case EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), nil
	case EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), nil
	case EncodingCP1252:
		return charmap.Windows1252, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
}

// Decode converts data in the named encoding to UTF-8 text
func Decode(data []byte, name string) (string, error) {
	enc, err := decoderFor(name)
	if err != nil {
		return "", err
	}
	if enc == nil {
		return string(data), nil
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return string(out), nil
}
