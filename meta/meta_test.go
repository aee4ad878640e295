package meta

import (
	"testing"

	"github.com/hetianyi/fdfs/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialize(t *testing.T) {
	assert.Equal(t, "", Serialize(nil, "=", "&"))
	pairs := []common.NameValuePair{
		{Name: "width", Value: "120"},
		{Name: "author", Value: ""},
		{Name: "width", Value: "240"},
	}
	assert.Equal(t, "width=120&author=&width=240", Serialize(pairs, "=", "&"))
	assert.Equal(t, "width\x02120\x01author\x02\x01width\x02240", Pack(pairs))
}

func TestParse(t *testing.T) {
	pairs := Parse("&a=1&&b&c=x=y&", "&", "=")
	assert.Equal(t, []common.NameValuePair{
		{Name: "a", Value: "1"},
		{Name: "b", Value: ""},
		{Name: "c", Value: "x=y"},
	}, pairs)
	assert.Empty(t, Parse("", "&", "="))
}

func TestParseEmptyName(t *testing.T) {
	// the name stays empty, the value is not promoted to the name
	pairs := Split("\x02value\x01k\x02v")
	assert.Equal(t, []common.NameValuePair{
		{Name: "", Value: "value"},
		{Name: "k", Value: "v"},
	}, pairs)
	assert.Equal(t, "\x02value\x01k\x02v", Pack(pairs))
}

func TestRoundTrip(t *testing.T) {
	seqs := [][]common.NameValuePair{
		{{Name: "k", Value: "v"}},
		{{Name: "ext", Value: "jpg"}, {Name: "size", Value: "1024x768"}, {Name: "ext", Value: "png"}},
		{{Name: "名字", Value: "值"}, {Name: "empty", Value: ""}},
	}
	for _, pairs := range seqs {
		text := Pack(pairs)
		back := Split(text)
		assert.Equal(t, pairs, back)
		assert.Equal(t, text, Pack(back))

		custom := Serialize(pairs, ":", ";")
		assert.Equal(t, pairs, Parse(custom, ";", ":"))
	}
}

func TestEncode(t *testing.T) {
	bs, err := Encode(nil, "UTF-8")
	require.NoError(t, err)
	assert.Empty(t, bs)

	pairs := []common.NameValuePair{{Name: "name", Value: "é"}}
	bs, err = Encode(pairs, "utf8")
	require.NoError(t, err)
	assert.Equal(t, []byte("name\x02é"), bs)

	bs, err = Encode(pairs, "ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, []byte{'n', 'a', 'm', 'e', 0x02, 0xe9}, bs)

	_, err = Encode(pairs, "no-such-charset")
	assert.Error(t, err)
	assert.Error(t, CheckCharset("no-such-charset"))
	assert.NoError(t, CheckCharset("gbk"))
}
