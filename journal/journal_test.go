package journal_test

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/fdfs/journal"
	"github.com/hetianyi/gox/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(&logger.Config{
		Level: logger.FatalLevel,
	})
}

func TestJournal(t *testing.T) {
	dir, err := ioutil.TempDir("", "fdfs-journal")
	require.NoError(t, err)
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "journal.db")

	j, err := journal.Open(path)
	require.NoError(t, err)

	results := []*common.UploadResult{
		{Group: "group2", RemoteFileName: "M00/00/01/b.png", SourceIp: "10.0.0.2"},
		{Group: "group1", RemoteFileName: "M00/00/00/a.jpg", SourceIp: "10.0.0.1"},
	}
	require.NoError(t, j.Record("b.png", results[0]))
	require.NoError(t, j.Record("a.jpg", results[1]))

	rec, err := j.Get("group1/M00/00/00/a.jpg")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "a.jpg", rec.LocalName)
	assert.Equal(t, "10.0.0.1", rec.SourceIp)
	assert.False(t, rec.UploadedAt.IsZero())

	rec, err = j.Get("group9/none")
	require.NoError(t, err)
	assert.Nil(t, rec)
	require.NoError(t, j.Close())

	// records survive reopening
	j, err = journal.Open(path)
	require.NoError(t, err)
	defer j.Close()
	var ids []string
	require.NoError(t, j.List(func(rec *journal.Record) bool {
		ids = append(ids, rec.FileId)
		return true
	}))
	assert.Equal(t, []string{"group1/M00/00/00/a.jpg", "group2/M00/00/01/b.png"}, ids)

	ids = nil
	require.NoError(t, j.List(func(rec *journal.Record) bool {
		ids = append(ids, rec.FileId)
		return false
	}))
	assert.Len(t, ids, 1)
}
