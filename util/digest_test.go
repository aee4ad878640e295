package util

import (
	"crypto/md5"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeAccessToken(t *testing.T) {
	sum := md5.Sum([]byte("group1/M00/00/00/abc.jpgFastDFS12345678901400000000"))
	assert.Equal(t, hex.EncodeToString(sum[:]), ComputeAccessToken("group1/M00/00/00/abc.jpg", 1400000000, "FastDFS1234567890"))

	// md5("0")
	assert.Equal(t, "cfcd208495d565ef66e7dff9f98764da", ComputeAccessToken("", 0, ""))
	assert.Len(t, ComputeAccessToken("a", -1, "b"), 32)
	assert.NotEqual(t, ComputeAccessToken("a", 1, "b"), ComputeAccessToken("a", 2, "b"))
}

func TestAccessUrl(t *testing.T) {
	u := AccessUrl("http://img.example.com/", "/group1/M00/00/00/abc.jpg", 1400000000, "key")
	assert.Equal(t, "http://img.example.com/group1/M00/00/00/abc.jpg?token="+
		ComputeAccessToken("/group1/M00/00/00/abc.jpg", 1400000000, "key")+"&ts=1400000000", u)
}
