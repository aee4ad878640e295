// Package meta converts file metadata between name-value pairs
// and the separator delimited text the storage servers keep.
package meta

import (
	"strings"

	"github.com/hetianyi/fdfs/common"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/htmlindex"
)

// Serialize joins every pair as name+fieldSep+value, pairs joined by recordSep.
func Serialize(pairs []common.NameValuePair, fieldSep, recordSep string) string {
	if len(pairs) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(32 * len(pairs))
	for i, p := range pairs {
		if i > 0 {
			sb.WriteString(recordSep)
		}
		sb.WriteString(p.Name)
		sb.WriteString(fieldSep)
		sb.WriteString(p.Value)
	}
	return sb.String()
}

// Parse splits text into pairs. Empty records are dropped,
// a record without fieldSep becomes a pair with an empty value
// and a record starting with fieldSep keeps an empty name.
func Parse(text, recordSep, fieldSep string) []common.NameValuePair {
	rows := strings.Split(text, recordSep)
	pairs := make([]common.NameValuePair, 0, len(rows))
	for _, row := range rows {
		if row == "" {
			continue
		}
		cols := strings.SplitN(row, fieldSep, 2)
		p := common.NameValuePair{Name: cols[0]}
		if len(cols) == 2 {
			p.Value = cols[1]
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// Pack serializes pairs with the protocol separators.
func Pack(pairs []common.NameValuePair) string {
	return Serialize(pairs, common.FDFS_FIELD_SEPERATOR, common.FDFS_RECORD_SEPERATOR)
}

// Split parses text written with the protocol separators.
func Split(text string) []common.NameValuePair {
	return Parse(text, common.FDFS_RECORD_SEPERATOR, common.FDFS_FIELD_SEPERATOR)
}

// Encode packs pairs and encodes the text in the given charset.
// nil pairs encode to an empty buffer.
func Encode(pairs []common.NameValuePair, charset string) ([]byte, error) {
	if pairs == nil {
		return []byte{}, nil
	}
	text := Pack(pairs)
	if charset == "" || IsUTF8(charset) {
		return []byte(text), nil
	}
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported charset %q", charset)
	}
	bs, err := enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot encode metadata as %s", charset)
	}
	return bs, nil
}

// CheckCharset reports whether charset names a known encoding.
func CheckCharset(charset string) error {
	if charset == "" || IsUTF8(charset) {
		return nil
	}
	_, err := htmlindex.Get(charset)
	return err
}

func IsUTF8(charset string) bool {
	c := strings.ToLower(strings.TrimSpace(charset))
	return c == "utf-8" || c == "utf8"
}
