package proto

import (
	"io"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/gox/convert"
	"github.com/hetianyi/gox/logger"
)

// UnknownLength tells ReadHeader/ReadPackage that the body length is decided by the server.
const UnknownLength int64 = -1

// max consecutive empty reads tolerated while filling a buffer.
const maxEmptyReads = 100

type HeaderInfo struct {
	ErrorNo byte
	Length  int64
}

type PackageInfo struct {
	ErrorNo byte
	Body    []byte
}

// FramingError reports a frame that cannot be trusted,
// the connection it was read from must be dropped.
type FramingError struct {
	Source  string
	Command byte
	Msg     string
	Err     error
}

func (e *FramingError) Error() string {
	s := "source " + e.Source + ", cmd " + convert.IntToStr(int(e.Command)) + ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *FramingError) Unwrap() error {
	return e.Err
}

func (e *FramingError) Is(target error) bool {
	return target == common.ErrFraming
}

// NewFramingError logs and returns a FramingError.
func NewFramingError(source string, cmd byte, msg string, err error) error {
	fe := &FramingError{Source: source, Command: cmd, Msg: msg, Err: err}
	logger.Error(fe.Error())
	return fe
}

// PackHeader packs a frame header:
// body length(8, big-endian) + command(1) + error code(1).
func PackHeader(cmd byte, bodyLength int64, errorNo byte) []byte {
	buff := make([]byte, common.HEADER_LEN)
	convert.Length2Bytes(bodyLength, buff[:common.FDFS_PROTO_PKG_LEN_SIZE])
	buff[common.FDFS_PROTO_PKG_LEN_SIZE] = cmd
	buff[common.FDFS_PROTO_PKG_LEN_SIZE+1] = errorNo
	return buff
}

// ReadHeader reads one frame header and checks it against
// the expected command and, unless it is UnknownLength, the expected body length.
//
// A non-zero error code is not a framing error: it is returned
// with a zero length and a nil error.
func ReadHeader(r io.Reader, cmd byte, expectedBodyLength int64, source string) (*HeaderInfo, error) {
	buff := make([]byte, common.HEADER_LEN)
	n, err := ReadBytes(r, buff)
	if err != nil {
		return nil, NewFramingError(source, cmd, "short header, got "+convert.IntToStr(n)+
			" of "+convert.IntToStr(common.HEADER_LEN)+" bytes", err)
	}
	if buff[common.FDFS_PROTO_PKG_LEN_SIZE] != cmd {
		return nil, NewFramingError(source, cmd, "unexpected command "+
			convert.IntToStr(int(buff[common.FDFS_PROTO_PKG_LEN_SIZE])), nil)
	}
	if errorNo := buff[common.FDFS_PROTO_PKG_LEN_SIZE+1]; errorNo != 0 {
		return &HeaderInfo{ErrorNo: errorNo, Length: 0}, nil
	}
	length := convert.Bytes2Length(buff[:common.FDFS_PROTO_PKG_LEN_SIZE])
	if length < 0 {
		return nil, NewFramingError(source, cmd, "negative body length "+convert.Int64ToStr(length), nil)
	}
	if expectedBodyLength >= 0 && length != expectedBodyLength {
		return nil, NewFramingError(source, cmd, "body length "+convert.Int64ToStr(length)+
			" != expected "+convert.Int64ToStr(expectedBodyLength), nil)
	}
	return &HeaderInfo{ErrorNo: 0, Length: length}, nil
}

// ReadPackage reads a frame header followed by its whole body.
// Bodies longer than FDFS_MAX_RESP_BODY_LEN are framing errors.
func ReadPackage(r io.Reader, cmd byte, expectedBodyLength int64, source string) (*PackageInfo, error) {
	header, err := ReadHeader(r, cmd, expectedBodyLength, source)
	if err != nil {
		return nil, err
	}
	if header.ErrorNo != 0 {
		return &PackageInfo{ErrorNo: header.ErrorNo}, nil
	}
	if header.Length > common.FDFS_MAX_RESP_BODY_LEN {
		return nil, NewFramingError(source, cmd, "body length "+convert.Int64ToStr(header.Length)+
			" exceeds "+convert.IntToStr(common.FDFS_MAX_RESP_BODY_LEN), nil)
	}
	body := make([]byte, header.Length)
	n, err := ReadBytes(r, body)
	if err != nil {
		return nil, NewFramingError(source, cmd, "short body, got "+convert.IntToStr(n)+
			" of "+convert.Int64ToStr(header.Length)+" bytes", err)
	}
	return &PackageInfo{ErrorNo: 0, Body: body}, nil
}

// ReadBytes fills buff from r, tolerating partial and empty reads.
// It returns io.ErrUnexpectedEOF if the stream ends first.
func ReadBytes(r io.Reader, buff []byte) (int, error) {
	read := 0
	empty := 0
	for read < len(buff) {
		n, err := r.Read(buff[read:])
		read += n
		if read >= len(buff) {
			break
		}
		if err != nil {
			if err == io.EOF {
				return read, io.ErrUnexpectedEOF
			}
			return read, err
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return read, io.ErrNoProgress
			}
			continue
		}
		empty = 0
	}
	return read, nil
}
