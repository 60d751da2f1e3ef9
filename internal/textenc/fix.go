package textenc

import (
	"fmt"
	"os"
	"regexp"
	"unicode/utf8"
)

// UTF8MetaTag is the declaration written into rewritten documents.
const UTF8MetaTag = `<meta http-equiv="Content-Type" content="text/html; charset=UTF-8">`

var (
	metaCharsetRe = regexp.MustCompile(`(?i)<meta\s+[^>]*charset\s*=\s*['"]?[^'"\s>]+['"]?[^>]*>`)
	headOpenRe    = regexp.MustCompile(`(?i)<head[^>]*>`)
)

// Fix decodes the file at path from label and writes it back as UTF-8 with a
// UTF-8 charset declaration. The rewrite is destructive: running it again on
// the converted file with the old label corrupts it, so callers go through
// ConvertedSet.
func Fix(path string, label Label) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	content, err := ReadFile(path, label)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(RewriteDeclaration(content)), info.Mode().Perm()); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// RewriteDeclaration replaces every charset meta tag with the UTF-8 one, or
// inserts it after the head opening tag. Without a head element the content
// is returned unchanged.
func RewriteDeclaration(content string) string {
	if metaCharsetRe.MatchString(content) {
		return metaCharsetRe.ReplaceAllLiteralString(content, UTF8MetaTag)
	}
	loc := headOpenRe.FindStringIndex(content)
	if loc == nil {
		return content
	}
	return content[:loc[1]] + "\n" + UTF8MetaTag + content[loc[1]:]
}

// IsUTF8Text reports whether data is valid UTF-8 holding at least one
// multibyte rune. GBK and Big5 text with CJK content practically never
// passes, while a page already rewritten by Fix always does.
func IsUTF8Text(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	for _, b := range data {
		if b >= utf8.RuneSelf {
			return true
		}
	}
	return false
}

// AlreadyUTF8 reads the file at path and applies IsUTF8Text. An unreadable
// file reports false.
func AlreadyUTF8(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	return IsUTF8Text(data)
}
