package textenc

import (
	"fmt"
	"os"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/encoding/unicode"
)

// Encoding returns the decoder family for a label. Labels nothing knows are
// read as UTF-8.
func Encoding(label Label) encoding.Encoding {
	switch label {
	case UTF8, "":
		return unicode.UTF8BOM
	case GBK:
		return simplifiedchinese.GBK
	case Big5:
		return traditionalchinese.Big5
	}
	if enc, _ := charset.Lookup(string(label)); enc != nil {
		return enc
	}
	return unicode.UTF8BOM
}

// Known reports whether the label maps to a real decoder.
func Known(label Label) bool {
	switch label {
	case UTF8, GBK, Big5:
		return true
	}
	enc, _ := charset.Lookup(string(label))
	return enc != nil
}

// Decode converts raw bytes in the given encoding to a UTF-8 string. A
// decoder failure degrades to the raw bytes.
func Decode(data []byte, label Label) string {
	out, err := Encoding(label).NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(out)
}

// ReadFile reads and decodes a whole file.
func ReadFile(path string, label Label) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(data, label), nil
}

// ReadFile detects the file's encoding and decodes it.
func (d Detector) ReadFile(path string) (string, Label, error) {
	label := d.Detect(path)
	text, err := ReadFile(path, label)
	return text, label, err
}
