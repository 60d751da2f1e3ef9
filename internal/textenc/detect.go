// Package textenc detects the text encoding of CHM documents, decodes them,
// and rewrites legacy-encoded pages to UTF-8.
package textenc

import (
	"io"
	"os"
	"regexp"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Label names a text encoding. UTF8, GBK and Big5 are the canonical values;
// any other charset token found in a document is carried verbatim.
type Label string

const (
	UTF8 Label = "UTF-8"
	GBK  Label = "GBK"
	Big5 Label = "Big5"
)

// DefaultSampleSize is how many leading bytes detection inspects.
const DefaultSampleSize = 8192

// gbkPairThreshold is the number of GBK-shaped byte pairs that must be
// exceeded before the heuristic reports GBK.
const gbkPairThreshold = 5

var charsetDeclRe = regexp.MustCompile(`(?i)charset\s*=\s*['"]?([^'"\s>]+)`)

func (l Label) String() string { return string(l) }

// IsUTF8 reports whether the label is the canonical encoding.
func (l Label) IsUTF8() bool { return l == UTF8 }

// Detector reads a bounded prefix of a file and guesses its encoding.
type Detector struct {
	SampleSize int // Bytes to inspect (0 = DefaultSampleSize)
}

// Detect guesses the encoding of the file at path using the default sample size.
func Detect(path string) Label {
	return Detector{}.Detect(path)
}

// Detect never fails: an unreadable file is reported as UTF8.
func (d Detector) Detect(path string) Label {
	size := d.SampleSize
	if size <= 0 {
		size = DefaultSampleSize
	}

	f, err := os.Open(path)
	if err != nil {
		return UTF8
	}
	defer f.Close()

	sample, err := io.ReadAll(io.LimitReader(f, int64(size)))
	if err != nil && len(sample) == 0 {
		return UTF8
	}
	return DetectBytes(sample)
}

// DetectData inspects the same bounded prefix of an in-memory document.
func (d Detector) DetectData(data []byte) Label {
	size := d.SampleSize
	if size <= 0 {
		size = DefaultSampleSize
	}
	if len(data) > size {
		data = data[:size]
	}
	return DetectBytes(data)
}

// DetectBytes applies, in order: an explicit charset declaration, the GBK
// byte-pair heuristic, and the UTF8 default.
func DetectBytes(data []byte) Label {
	if token, ok := declaredCharset(data); ok {
		return Normalize(token)
	}
	if looksLikeGBK(data) {
		return GBK
	}
	return UTF8
}

// Normalize maps a raw charset token onto a Label.
func Normalize(token string) Label {
	upper := strings.ToUpper(strings.TrimSpace(token))
	switch {
	case strings.Contains(upper, "GBK"),
		strings.Contains(upper, "GB2312"),
		strings.Contains(upper, "GB-2312"),
		strings.Contains(upper, "CP936"):
		return GBK
	case strings.Contains(upper, "BIG5"):
		return Big5
	case strings.Contains(upper, "UTF-8"), strings.Contains(upper, "UTF8"):
		return UTF8
	}
	return Label(upper)
}

// declaredCharset scans the buffer as single-byte text for a charset= token.
func declaredCharset(data []byte) (string, bool) {
	latin1, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		latin1 = data
	}
	m := charsetDeclRe.FindSubmatch(latin1)
	if m == nil {
		return "", false
	}
	return string(m[1]), true
}

func looksLikeGBK(data []byte) bool {
	gbkPairs, utf8Pairs := 0, 0
	for i := 0; i+1 < len(data); i++ {
		c1, c2 := data[i], data[i+1]
		if c1 >= 0x81 && c1 <= 0xFE && c2 >= 0x40 && c2 <= 0xFE {
			gbkPairs++
		}
		if c1&0xE0 == 0xE0 && c2&0xC0 == 0x80 {
			utf8Pairs++
		}
	}
	return gbkPairs > utf8Pairs && gbkPairs > gbkPairThreshold
}
