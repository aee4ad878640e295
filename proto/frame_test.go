package proto_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/fdfs/proto"
	"github.com/hetianyi/gox/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(&logger.Config{
		Level: logger.FatalLevel,
	})
}

// chunkReader hands out one chunk per Read call; a nil chunk is an empty read.
type chunkReader struct {
	chunks [][]byte
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	c := r.chunks[0]
	n := copy(p, c)
	if n < len(c) {
		r.chunks[0] = c[n:]
	} else {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

func TestPackHeaderLayout(t *testing.T) {
	h := proto.PackHeader(common.STORAGE_PROTO_CMD_UPLOAD_FILE, 0x0102030405060708, 7)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 11, 7}, h)
	assert.Len(t, proto.PackHeader(0, 0, 0), common.HEADER_LEN)
}

func TestHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		cmd    byte
		length int64
	}{
		{common.STORAGE_PROTO_CMD_RESP, 0},
		{common.STORAGE_PROTO_CMD_RESP, 1},
		{common.TRACKER_PROTO_CMD_SERVICE_QUERY_STORE_WITH_GROUP_ONE, 40},
		{common.STORAGE_PROTO_CMD_UPLOAD_FILE, 1<<40 + 17},
		{255, 1<<63 - 1},
	}
	for _, c := range cases {
		r := bytes.NewReader(proto.PackHeader(c.cmd, c.length, 0))
		h, err := proto.ReadHeader(r, c.cmd, proto.UnknownLength, "test")
		require.NoError(t, err)
		assert.Equal(t, byte(0), h.ErrorNo)
		assert.Equal(t, c.length, h.Length)

		r = bytes.NewReader(proto.PackHeader(c.cmd, c.length, 0))
		h, err = proto.ReadHeader(r, c.cmd, c.length, "test")
		require.NoError(t, err)
		assert.Equal(t, c.length, h.Length)
	}
}

func TestReadHeaderErrorCode(t *testing.T) {
	// length is ignored once the error code is set
	r := bytes.NewReader(proto.PackHeader(common.STORAGE_PROTO_CMD_RESP, 99, 2))
	h, err := proto.ReadHeader(r, common.STORAGE_PROTO_CMD_RESP, 40, "storage")
	require.NoError(t, err)
	assert.Equal(t, byte(2), h.ErrorNo)
	assert.Equal(t, int64(0), h.Length)
}

func TestReadHeaderFramingErrors(t *testing.T) {
	t.Run("short header", func(t *testing.T) {
		_, err := proto.ReadHeader(bytes.NewReader([]byte{0, 0, 0}), common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrFraming))
		assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	})
	t.Run("wrong command", func(t *testing.T) {
		r := bytes.NewReader(proto.PackHeader(common.FDFS_PROTO_CMD_ACTIVE_TEST, 0, 0))
		_, err := proto.ReadHeader(r, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
		assert.True(t, errors.Is(err, common.ErrFraming))
	})
	t.Run("negative length", func(t *testing.T) {
		r := bytes.NewReader(proto.PackHeader(common.STORAGE_PROTO_CMD_RESP, -5, 0))
		_, err := proto.ReadHeader(r, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
		assert.True(t, errors.Is(err, common.ErrFraming))
	})
	t.Run("length mismatch", func(t *testing.T) {
		r := bytes.NewReader(proto.PackHeader(common.TRACKER_PROTO_CMD_RESP, 39, 0))
		_, err := proto.ReadHeader(r, common.TRACKER_PROTO_CMD_RESP, common.TRACKER_QUERY_STORAGE_STORE_BODY_LEN, "tracker")
		var fe *proto.FramingError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, "tracker", fe.Source)
	})
}

func TestReadPackageChunked(t *testing.T) {
	body := []byte("group1          M00/00/00/abc.jpg")
	header := proto.PackHeader(common.STORAGE_PROTO_CMD_RESP, int64(len(body)), 0)
	r := &chunkReader{chunks: [][]byte{
		header[:1],
		header[1:],
		body[:1],
		body[1:10],
		nil,
		body[10:],
	}}
	pkg, err := proto.ReadPackage(r, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
	require.NoError(t, err)
	assert.Equal(t, byte(0), pkg.ErrorNo)
	assert.Equal(t, body, pkg.Body)
}

func TestReadPackageShortBody(t *testing.T) {
	header := proto.PackHeader(common.STORAGE_PROTO_CMD_RESP, 20, 0)
	r := &chunkReader{chunks: [][]byte{header, []byte("only ten b")}}
	_, err := proto.ReadPackage(r, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrFraming))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}

func TestReadPackageOversizedBody(t *testing.T) {
	for _, length := range []int64{1 << 62, common.FDFS_MAX_RESP_BODY_LEN + 1} {
		var buff bytes.Buffer
		buff.Write(proto.PackHeader(common.STORAGE_PROTO_CMD_RESP, length, 0))
		buff.WriteString("group1          M00/00/00/abc.jpg")
		pkg, err := proto.ReadPackage(&buff, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
		assert.Nil(t, pkg)
		var fe *proto.FramingError
		require.True(t, errors.As(err, &fe), "length %d", length)
		assert.Equal(t, "storage", fe.Source)
	}

	body := make([]byte, common.FDFS_MAX_RESP_BODY_LEN)
	buff := bytes.NewBuffer(proto.PackHeader(common.STORAGE_PROTO_CMD_RESP, int64(len(body)), 0))
	buff.Write(body)
	pkg, err := proto.ReadPackage(buff, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
	require.NoError(t, err)
	assert.Len(t, pkg.Body, common.FDFS_MAX_RESP_BODY_LEN)
}

func TestReadPackageErrorCodeSkipsBody(t *testing.T) {
	var buff bytes.Buffer
	buff.Write(proto.PackHeader(common.STORAGE_PROTO_CMD_RESP, 0, 28))
	buff.WriteString("trailing")
	pkg, err := proto.ReadPackage(&buff, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, "storage")
	require.NoError(t, err)
	assert.Equal(t, byte(28), pkg.ErrorNo)
	assert.Empty(t, pkg.Body)
	assert.Equal(t, "trailing", buff.String())
}

func TestReadBytesNoProgress(t *testing.T) {
	chunks := make([][]byte, 200)
	_, err := proto.ReadBytes(&chunkReader{chunks: chunks}, make([]byte, 4))
	assert.Equal(t, io.ErrNoProgress, err)
}
