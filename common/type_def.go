package common

import (
	"strings"

	"github.com/hetianyi/gox/convert"
)

type ClientConfig struct {
	Trackers                []string `json:"trackers"`
	NetworkTimeout          int      `json:"networkTimeout"` // ms
	RetryInterval           int      `json:"retryInterval"`  // ms
	DialTimeout             int      `json:"dialTimeout"`    // ms
	Charset                 string   `json:"charset"`
	MaxConnectionsPerServer int      `json:"maxConnectionsPerServer"`
	Secure                  bool     `json:"secure"`
	LogLevel                string   `json:"logLevel"`
	SecretKey               string   `json:"secretKey"`
	HttpAddress             string   `json:"httpAddress"`
	HttpBaseUrl             string   `json:"httpBaseUrl"`
	JournalPath             string   `json:"journalPath"`
	ParsedTrackers          []Server `json:"-"`
}

type Server struct {
	Host string `json:"host"`
	Port uint16 `json:"port"`
}

func (s *Server) ConnectionString() string {
	return s.Host + ":" + convert.Uint16ToStr(s.Port)
}

// StorageEndpoint is the storage server the tracker picked for one upload.
type StorageEndpoint struct {
	Server
	Group          string `json:"group"`
	StorePathIndex byte   `json:"storePathIndex"`
}

type NameValuePair struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type UploadResult struct {
	Group          string `json:"group"`
	RemoteFileName string `json:"remoteFileName"`
	SourceIp       string `json:"sourceIp"`
}

// FileId returns "<group>/<remote file name>".
func (r *UploadResult) FileId() string {
	return r.Group + SPLIT_GROUP_AND_FILENAME_SEP + r.RemoteFileName
}

// Url joins the file id onto a storage http base url.
func (r *UploadResult) Url(base string) string {
	if base == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + r.FileId()
}
