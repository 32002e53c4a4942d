package core

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestReadInput(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		encoding string
		want     string
	}{
		{
			name:  "plain utf-8",
			input: []byte("name,age\nAlex,32"),
			want:  "name,age\nAlex,32",
		},
		{
			name:  "utf-8 BOM stripped",
			input: append([]byte{0xEF, 0xBB, 0xBF}, []byte("name\nHomer")...),
			want:  "name\nHomer",
		},
		{
			name:  "only BOM",
			input: []byte{0xEF, 0xBB, 0xBF},
			want:  "",
		},
		{
			name:  "invalid utf-8 replaced",
			input: []byte{'a', ',', 0xFF, 'b'},
			want:  "a,\uFFFDb",
		},
		{
			name:  "utf-16 detected from BOM",
			input: []byte{0xFF, 0xFE, 'a', 0, ',', 0, 'b', 0},
			want:  "a,b",
		},
		{
			name:     "latin1",
			input:    []byte{'c', 'a', 'f', 0xE9},
			encoding: "latin1",
			want:     "café",
		},
		{
			name:     "windows-1252 euro sign",
			input:    []byte{0x80, '5'},
			encoding: "windows-1252",
			want:     "€5",
		},
		{
			name:  "cyrillic passes through",
			input: []byte("Марка,Цена\nBMW,500"),
			want:  "Марка,Цена\nBMW,500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadInput(bytes.NewReader(tt.input), tt.encoding, 1024)
			if err != nil {
				t.Fatalf("ReadInput() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("ReadInput() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadInput_SizeLimit(t *testing.T) {
	if _, err := ReadInput(strings.NewReader("12345"), "", 5); err != nil {
		t.Errorf("input at limit: unexpected error %v", err)
	}
	if _, err := ReadInput(strings.NewReader("123456"), "", 5); !errors.Is(err, ErrInputTooLarge) {
		t.Errorf("input over limit: error = %v, want ErrInputTooLarge", err)
	}
	if _, err := ReadInput(strings.NewReader("123456"), "", 0); err != nil {
		t.Errorf("no limit: unexpected error %v", err)
	}
}

func TestReadInput_Errors(t *testing.T) {
	if _, err := ReadInput(nil, "", 10); !errors.Is(err, ErrNoInput) {
		t.Errorf("nil reader: error = %v, want ErrNoInput", err)
	}
	if _, err := ReadInput(strings.NewReader("a"), "ebcdic", 10); !errors.Is(err, ErrUnsupportedEncoding) {
		t.Errorf("unknown encoding: error = %v, want ErrUnsupportedEncoding", err)
	}
}
