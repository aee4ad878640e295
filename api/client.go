package api

import (
	"bytes"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/fdfs/meta"
	"github.com/hetianyi/fdfs/pool"
	"github.com/hetianyi/fdfs/proto"
	"github.com/hetianyi/fdfs/tracker"
	"github.com/hetianyi/gox/convert"
	"github.com/hetianyi/gox/file"
	"github.com/hetianyi/gox/logger"
	"github.com/pkg/errors"
)

// store path index + file size + extension
const uploadPrefixLen = 1 + common.FDFS_PROTO_PKG_LEN_SIZE + common.FDFS_FILE_EXT_NAME_MAX_LEN

// Tracker resolves the storage server of the next upload attempt.
type Tracker interface {
	ResolveStoreEndpoint(group string) (*common.StorageEndpoint, error)
}

// PoolProvider hands out connection pools by endpoint.
type PoolProvider interface {
	ObtainPool(host string, port int, secure bool, persistent bool) pool.ObjectPool
}

type Config struct {
	// NetworkTimeout bounds the whole upload, retries included.
	NetworkTimeout time.Duration
	// RetryInterval is the pause between two failed attempts.
	RetryInterval time.Duration
	// Charset of the metadata text.
	Charset string
	// Secure dials storage servers over TLS.
	Secure bool
}

func DefaultConfig() *Config {
	return &Config{
		NetworkTimeout: time.Millisecond * common.DEFAULT_NETWORK_TIMEOUT,
		RetryInterval:  time.Millisecond * common.DEFAULT_RETRY_INTERVAL,
		Charset:        common.DEFAULT_CHARSET,
	}
}

// ConfigFrom converts a client config file into an upload Config.
func ConfigFrom(c *common.ClientConfig) *Config {
	cfg := DefaultConfig()
	if c == nil {
		return cfg
	}
	if c.NetworkTimeout > 0 {
		cfg.NetworkTimeout = time.Millisecond * time.Duration(c.NetworkTimeout)
	}
	if c.RetryInterval > 0 {
		cfg.RetryInterval = time.Millisecond * time.Duration(c.RetryInterval)
	} else if c.RetryInterval < 0 {
		cfg.RetryInterval = 0
	}
	if c.Charset != "" {
		cfg.Charset = c.Charset
	}
	cfg.Secure = c.Secure
	return cfg
}

// ServerError is a request the storage server answered with a non-zero error code.
type ServerError struct {
	Code     byte
	Endpoint string
}

func (e *ServerError) Error() string {
	return "storage server " + e.Endpoint + " rejected upload, error code " + convert.IntToStr(int(e.Code))
}

func (e *ServerError) Is(target error) bool {
	return target == common.ErrUploadRejected
}

// sourceError is a local read failure, retrying cannot fix it.
type sourceError struct {
	err error
}

func (e *sourceError) Error() string {
	return "read upload source: " + e.err.Error()
}

func (e *sourceError) Unwrap() error {
	return e.err
}

// Source is the content of an upload, an in-memory buffer or a local file.
type Source struct {
	buffer []byte
	path   string
}

func BytesSource(buffer []byte) Source {
	return Source{buffer: buffer}
}

func FileSource(path string) Source {
	return Source{path: path}
}

func (s Source) IsFile() bool {
	return s.path != ""
}

// open returns the content length and, for files, the opened file.
// A file that does not exist has length 0.
func (s Source) open() (int64, *os.File, error) {
	if !s.IsFile() {
		return int64(len(s.buffer)), nil, nil
	}
	if !file.Exists(s.path) {
		logger.Warn("upload file ", s.path, " does not exist, sending empty content")
		return 0, nil, nil
	}
	f, err := os.Open(s.path)
	if err != nil {
		return 0, nil, &sourceError{err: err}
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return 0, nil, &sourceError{err: err}
	}
	return info.Size(), f, nil
}

// Client uploads files to storage servers. It keeps no state between calls
// and is safe for concurrent use.
type Client struct {
	config  *Config
	tracker Tracker
	pools   PoolProvider
}

func NewClient(config *Config, t Tracker, pools PoolProvider) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.NetworkTimeout <= 0 {
		cfg.NetworkTimeout = time.Millisecond * common.DEFAULT_NETWORK_TIMEOUT
	}
	return &Client{
		config:  &cfg,
		tracker: t,
		pools:   pools,
	}
}

// New wires a Client to the trackers of a client config file.
// The returned manager owns every pooled connection and should be closed on exit.
func New(c *common.ClientConfig) (*Client, *pool.Manager) {
	m := pool.NewManager(c.MaxConnectionsPerServer, time.Millisecond*time.Duration(c.DialTimeout))
	t := tracker.NewClient(c.ParsedTrackers, m, c.Secure)
	return NewClient(ConfigFrom(c), t, m), m
}

func (c *Client) UploadBytes(group string, buffer []byte, ext string, metas []common.NameValuePair) (*common.UploadResult, error) {
	return c.Upload(group, BytesSource(buffer), ext, metas)
}

func (c *Client) UploadFile(group string, path string, ext string, metas []common.NameValuePair) (*common.UploadResult, error) {
	return c.Upload(group, FileSource(path), ext, metas)
}

// Upload sends src to a storage server chosen by the tracker.
//
// Transport and framing failures are retried against a freshly resolved
// storage server until NetworkTimeout has elapsed, then common.ErrDeadlineExceeded
// is returned. A storage server rejection (*ServerError) is returned at once.
func (c *Client) Upload(group string, src Source, ext string, metas []common.NameValuePair) (*common.UploadResult, error) {
	trace := uuid.New().String()[:8]
	metaBuff, err := meta.Encode(metas, c.config.Charset)
	if err != nil {
		return nil, err
	}
	begin := time.Now()
	var lastErr error
	attempt := 0
	for {
		if time.Since(begin) > c.config.NetworkTimeout {
			break
		}
		attempt++
		ret, err := c.upload(trace, begin.Add(c.config.NetworkTimeout), group, src, ext, metaBuff)
		if err == nil {
			logger.Debug("[", trace, "] upload success after ", attempt, " attempt(s): ", ret.FileId())
			return ret, nil
		}
		var se *ServerError
		if errors.As(err, &se) {
			logger.Error("[", trace, "] ", err)
			return nil, err
		}
		var le *sourceError
		if errors.As(err, &le) {
			logger.Error("[", trace, "] ", err)
			return nil, err
		}
		logger.Warn("[", trace, "] upload attempt ", attempt, " failed: ", err)
		lastErr = err
		c.pause(begin)
	}
	if lastErr == nil {
		return nil, common.ErrDeadlineExceeded
	}
	return nil, errors.Wrapf(common.ErrDeadlineExceeded, "%d attempt(s), last error: %v", attempt, lastErr)
}

// pause waits RetryInterval, never past the deadline.
func (c *Client) pause(begin time.Time) {
	if c.config.RetryInterval <= 0 {
		return
	}
	left := c.config.NetworkTimeout - time.Since(begin)
	if left <= 0 {
		return
	}
	if left > c.config.RetryInterval {
		left = c.config.RetryInterval
	}
	time.Sleep(left)
}

// upload runs a single attempt on a single connection.
// Socket I/O of the attempt is bounded by deadline.
func (c *Client) upload(trace string, deadline time.Time, group string, src Source, ext string, metaBuff []byte) (*common.UploadResult, error) {
	endpoint, err := c.tracker.ResolveStoreEndpoint(group)
	if err != nil {
		return nil, errors.Wrap(err, "resolve storage server")
	}
	host, port := endpoint.Host, int(endpoint.Port)
	p := c.pools.ObtainPool(host, port, c.config.Secure, true)
	conn, err := p.GetObject(host, port)
	if err != nil {
		return nil, errors.Wrapf(err, "connect storage server %s", endpoint.ConnectionString())
	}
	conn.StorePathIndex = endpoint.StorePathIndex
	logger.Debug("[", trace, "] storage server ", conn.Address(), ", store path ", int(conn.StorePathIndex),
		", idle connections ", p.NumIdle())

	// cleared only once the connection is known to be at a frame boundary
	broken := true
	defer func() {
		conn.Close(broken, !broken)
	}()

	size, f, err := src.open()
	if err != nil {
		broken = false
		return nil, err
	}
	if f != nil {
		defer f.Close()
	}
	// metadata travels with a separate request, it is not part of this body.
	logger.Trace("[", trace, "] metadata buffer ", len(metaBuff), " bytes not sent with upload body")

	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	var buff bytes.Buffer
	buff.Write(proto.PackHeader(common.STORAGE_PROTO_CMD_UPLOAD_FILE, uploadPrefixLen+size, 0))
	buff.WriteByte(conn.StorePathIndex)
	sizeBuff := make([]byte, common.FDFS_PROTO_PKG_LEN_SIZE)
	buff.Write(convert.Length2Bytes(size, sizeBuff))
	buff.Write(ExtensionField(ext))
	if f == nil && size > 0 && size <= common.UPLOAD_CHUNK_SIZE {
		buff.Write(src.buffer)
		size = 0
	}
	if _, err := conn.Write(buff.Bytes()); err != nil {
		return nil, err
	}
	if f != nil {
		if err := sendFile(conn, f, size); err != nil {
			return nil, err
		}
	} else if size > 0 {
		if _, err := conn.Write(src.buffer); err != nil {
			return nil, err
		}
	}

	pkg, err := proto.ReadPackage(conn, common.STORAGE_PROTO_CMD_RESP, proto.UnknownLength, common.STORAGE_SOURCE)
	if err != nil {
		return nil, err
	}
	if pkg.ErrorNo != 0 {
		broken = false
		return nil, &ServerError{Code: pkg.ErrorNo, Endpoint: conn.Address()}
	}
	ret, err := DecodeUploadResponse(pkg.Body, conn.Host)
	if err != nil {
		return nil, err
	}
	broken = false
	return ret, nil
}

// sendFile streams exactly size bytes of f in UPLOAD_CHUNK_SIZE chunks.
func sendFile(w io.Writer, f *os.File, size int64) error {
	chunk := make([]byte, common.UPLOAD_CHUNK_SIZE)
	var sent int64
	for sent < size {
		n := int64(len(chunk))
		if size-sent < n {
			n = size - sent
		}
		read, err := f.Read(chunk[:n])
		if read > 0 {
			if _, werr := w.Write(chunk[:read]); werr != nil {
				return werr
			}
			sent += int64(read)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return &sourceError{err: err}
		}
	}
	if sent != size {
		return &sourceError{err: errors.Errorf("file %s shrank to %d of %d bytes", f.Name(), sent, size)}
	}
	return nil
}

// ExtensionField cuts or zero-pads ext to FDFS_FILE_EXT_NAME_MAX_LEN bytes.
func ExtensionField(ext string) []byte {
	buff := make([]byte, common.FDFS_FILE_EXT_NAME_MAX_LEN)
	copy(buff, ext)
	return buff
}

// DecodeUploadResponse splits an upload response body into
// the padded group name field and the remote file name.
func DecodeUploadResponse(body []byte, sourceIp string) (*common.UploadResult, error) {
	if len(body) <= common.FDFS_GROUP_NAME_MAX_LEN {
		return nil, proto.NewFramingError(common.STORAGE_SOURCE, common.STORAGE_PROTO_CMD_RESP,
			"body length "+convert.IntToStr(len(body))+" <= "+convert.IntToStr(common.FDFS_GROUP_NAME_MAX_LEN), nil)
	}
	return &common.UploadResult{
		Group:          string(bytes.Trim(body[:common.FDFS_GROUP_NAME_MAX_LEN], " \x00")),
		RemoteFileName: string(body[common.FDFS_GROUP_NAME_MAX_LEN:]),
		SourceIp:       sourceIp,
	}, nil
}
