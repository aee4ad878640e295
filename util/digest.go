package util

import (
	"crypto/md5"
	"encoding/hex"
	"hash"
	"net/url"
	"strconv"
	"strings"
)

func CreateMd5Hash() hash.Hash {
	return md5.New()
}

func GetMd5HashString(h hash.Hash) string {
	hashInBytes := h.Sum(nil)
	return hex.EncodeToString(hashInBytes)
}

// ComputeAccessToken computes the anti-leech token of a file:
// lowercase hex md5 of fileId + secretKey + decimal timestamp.
func ComputeAccessToken(fileId string, ts int64, secretKey string) string {
	h := CreateMd5Hash()
	h.Write([]byte(fileId))
	h.Write([]byte(secretKey))
	h.Write([]byte(strconv.FormatInt(ts, 10)))
	return GetMd5HashString(h)
}

// AccessUrl builds a tokenized download url of fileId under base.
func AccessUrl(base string, fileId string, ts int64, secretKey string) string {
	q := url.Values{}
	q.Set("token", ComputeAccessToken(fileId, ts, secretKey))
	q.Set("ts", strconv.FormatInt(ts, 10))
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(fileId, "/") + "?" + q.Encode()
}
