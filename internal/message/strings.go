package message

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"
)

// splitStrings decodes exactly count NUL-terminated UTF-8 strings filling p.
func splitStrings(p []byte, count int) ([]string, error) {
	if len(p) == 0 || p[len(p)-1] != 0 {
		return nil, fmt.Errorf("not NUL-terminated")
	}
	if n := bytes.Count(p, []byte{0}); n != count {
		return nil, fmt.Errorf("want %d NUL-terminated strings, found %d", count, n)
	}
	out := make([]string, 0, count)
	for _, run := range bytes.SplitN(p[:len(p)-1], []byte{0}, count) {
		if !utf8.Valid(run) {
			return nil, ErrInvalidUTF8
		}
		out = append(out, string(run))
	}
	return out, nil
}

func checkString(s string) error {
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	if strings.IndexByte(s, 0) >= 0 {
		return ErrEmbeddedNUL
	}
	return nil
}

func appendCString(dst []byte, s string) ([]byte, error) {
	if err := checkString(s); err != nil {
		return nil, err
	}
	dst = append(dst, s...)
	return append(dst, 0), nil
}
