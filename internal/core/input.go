package core

// input.go turns an uploaded byte stream into the string the parser works on.
//
// Spreadsheet exports arrive with a UTF-8 or UTF-16 byte order mark, with
// stray invalid bytes, or in a legacy single-byte code page. DecoderFor
// picks a golang.org/x/text transformer for each case:
//
//   - utf-8 (default): BOM-aware, so UTF-16 files with a BOM also decode;
//     invalid sequences become U+FFFD
//   - utf-16: little endian unless a BOM says otherwise
//   - latin1, windows-1252: single-byte code pages
//
// ReadInput enforces the size limit on the raw bytes, before decoding.

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrInputTooLarge is returned when the input exceeds the configured limit.
	ErrInputTooLarge = errors.New("file too large: input exceeds size limit")

	// ErrUnsupportedEncoding is returned for encoding names DecoderFor does not know.
	ErrUnsupportedEncoding = errors.New("encoding error: unsupported encoding")

	// ErrNoInput is returned when a request carries no CSV at all.
	ErrNoInput = errors.New("no file provided")
)

// DecoderFor returns a transformer that decodes the named encoding to UTF-8.
func DecoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8", "utf-8-sig":
		return unicode.BOMOverride(unicode.UTF8.NewDecoder()), nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	case "latin1", "iso-8859-1":
		return charmap.ISO8859_1.NewDecoder(), nil
	case "windows-1252", "cp1252":
		return charmap.Windows1252.NewDecoder(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEncoding, name)
	}
}

// ReadInput reads at most maxSize bytes from r and decodes them with the
// named encoding. A non-positive maxSize disables the limit.
func ReadInput(r io.Reader, encoding string, maxSize int64) (string, error) {
	if r == nil {
		return "", ErrNoInput
	}

	dec, err := DecoderFor(encoding)
	if err != nil {
		return "", err
	}

	src := r
	if maxSize > 0 {
		src = io.LimitReader(r, maxSize+1)
	}
	raw, err := io.ReadAll(src)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	if maxSize > 0 && int64(len(raw)) > maxSize {
		return "", ErrInputTooLarge
	}

	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(raw), dec))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnsupportedEncoding, err)
	}
	return string(decoded), nil
}
