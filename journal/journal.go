// Package journal keeps a local record of uploaded files in a bolt database.
package journal

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/boltdb/bolt"
	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/gox/file"
	"github.com/hetianyi/gox/logger"
	json "github.com/json-iterator/go"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
)

const BUCKET_KEY_UPLOADS = "uploads"

type Record struct {
	FileId         string    `json:"fileId"`
	Group          string    `json:"group"`
	RemoteFileName string    `json:"remoteFileName"`
	SourceIp       string    `json:"sourceIp"`
	LocalName      string    `json:"localName"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

type Journal struct {
	db   *bolt.DB
	lock *sync.Mutex
}

// Open opens or creates the journal file at path.
func Open(path string) (*Journal, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); !file.Exists(dir) {
		if err := file.CreateDirs(dir); err != nil {
			return nil, err
		}
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second * 5})
	if err != nil {
		return nil, errors.Wrapf(err, "open journal %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BUCKET_KEY_UPLOADS))
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	logger.Debug("journal opened: ", path)
	return &Journal{db: db, lock: new(sync.Mutex)}, nil
}

// Record stores an upload result, keyed by its file id.
func (j *Journal) Record(localName string, ret *common.UploadResult) error {
	rec := &Record{
		FileId:         ret.FileId(),
		Group:          ret.Group,
		RemoteFileName: ret.RemoteFileName,
		SourceIp:       ret.SourceIp,
		LocalName:      localName,
		UploadedAt:     time.Now(),
	}
	bs, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	j.lock.Lock()
	defer j.lock.Unlock()
	return j.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(BUCKET_KEY_UPLOADS)).Put([]byte(rec.FileId), bs)
	})
}

// Get returns the record of fileId, or nil.
func (j *Journal) Get(fileId string) (*Record, error) {
	var rec *Record
	err := j.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket([]byte(BUCKET_KEY_UPLOADS)).Get([]byte(fileId))
		if bs == nil {
			return nil
		}
		rec = &Record{}
		return json.Unmarshal(bs, rec)
	})
	return rec, err
}

// List walks all records in file id order until fn returns false.
func (j *Journal) List(fn func(rec *Record) bool) error {
	return j.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(BUCKET_KEY_UPLOADS)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			rec := &Record{}
			if err := json.Unmarshal(v, rec); err != nil {
				logger.Warn("skip broken journal record ", string(k), ": ", err)
				continue
			}
			if !fn(rec) {
				return nil
			}
		}
		return nil
	})
}

func (j *Journal) Close() error {
	return j.db.Close()
}
