package common

import "errors"

const (
	VERSION                      = "1.0.0"
	SERVER_PATTERN               = "^([^@^,:]+):([1-9][0-9]{0,4})$"
	DEFAULT_TRACKER_PORT         = 22122
	DEFAULT_NETWORK_TIMEOUT      = 30000 // ms
	DEFAULT_RETRY_INTERVAL       = 100   // ms
	DEFAULT_CHARSET              = "UTF-8"
	DEFAULT_MAX_CONN_PER_SERVER  = 50
	DEFAULT_DIAL_TIMEOUT         = 5000 // ms
	DEFAULT_HTTP_ADDRESS         = ":8080"
	UPLOAD_CHUNK_SIZE            = 128 * 1024 // 128k
	STORAGE_SOURCE               = "storage"
	TRACKER_SOURCE               = "tracker"
	SPLIT_GROUP_AND_FILENAME_SEP = "/"
)

// wire protocol constants shared by tracker and storage servers.
const (
	FDFS_PROTO_PKG_LEN_SIZE = 8
	HEADER_LEN              = FDFS_PROTO_PKG_LEN_SIZE + 2

	// upper bound of a response body read into memory
	FDFS_MAX_RESP_BODY_LEN = 1 << 20

	FDFS_GROUP_NAME_MAX_LEN    = 16
	FDFS_FILE_EXT_NAME_MAX_LEN = 6
	IP_ADDRESS_SIZE            = 16

	// group + ip + port + store path index
	TRACKER_QUERY_STORAGE_STORE_BODY_LEN = FDFS_GROUP_NAME_MAX_LEN + IP_ADDRESS_SIZE - 1 + FDFS_PROTO_PKG_LEN_SIZE + 1

	FDFS_RECORD_SEPERATOR = "\x01"
	FDFS_FIELD_SEPERATOR  = "\x02"
)

// command codes
const (
	TRACKER_PROTO_CMD_RESP                                  byte = 100
	STORAGE_PROTO_CMD_RESP                                  byte = TRACKER_PROTO_CMD_RESP
	TRACKER_PROTO_CMD_SERVICE_QUERY_STORE_WITHOUT_GROUP_ONE byte = 101
	TRACKER_PROTO_CMD_SERVICE_QUERY_STORE_WITH_GROUP_ONE    byte = 104
	STORAGE_PROTO_CMD_UPLOAD_FILE                           byte = 11
	FDFS_PROTO_CMD_ACTIVE_TEST                              byte = 111
)

var (
	ErrFraming            = errors.New("protocol framing error")
	ErrUploadRejected     = errors.New("upload rejected by storage server")
	ErrDeadlineExceeded   = errors.New("upload did not succeed within network timeout")
	ErrNoStorageAvailable = errors.New("no storage available")
	ErrNoTrackerAvailable = errors.New("no tracker available")
	ErrPoolExhausted      = errors.New("connection pool is full")
	ErrPoolClosed         = errors.New("connection pool is closed")
)
