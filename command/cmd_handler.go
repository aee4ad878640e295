package command

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/hetianyi/fdfs/api"
	"github.com/hetianyi/fdfs/journal"
	"github.com/hetianyi/fdfs/svc"
	"github.com/hetianyi/fdfs/util"
	"github.com/hetianyi/gox"
	"github.com/hetianyi/gox/logger"
	json "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

// call calls handler function due to command.
func call(cmd Command) error {
	if err := ConfigAssembly(); err != nil {
		return err
	}
	switch cmd {
	case CMD_UPLOAD_FILE:
		return handleUploadFile()
	case CMD_ACCESS_TOKEN:
		return handleAccessToken()
	case CMD_HISTORY:
		return handleHistory()
	case CMD_SERVE:
		return handleServe()
	}
	return nil
}

// handleUploadFile uploads the files of the command line one by one.
func handleUploadFile() error {
	client, manager := api.New(clientConfig)
	defer manager.Close()

	var j *journal.Journal
	if !noJournal {
		var err error
		if j, err = journal.Open(clientConfig.JournalPath); err != nil {
			logger.Warn("upload journal disabled: ", err)
		} else {
			defer j.Close()
		}
	}

	total := 0   // total files
	success := 0 // success files
	gox.WalkList(&uploadFiles, func(item interface{}) bool {
		total++
		path := item.(string)
		ext := uploadExt
		if ext == "" {
			ext = strings.TrimPrefix(filepath.Ext(path), ".")
		}
		ret, err := client.UploadFile(uploadGroup, path, ext, nil)
		if err != nil {
			logger.Error("upload ", path, " failed: ", err)
			return false
		}
		success++
		if j != nil {
			if err := j.Record(filepath.Base(path), ret); err != nil {
				logger.Warn("cannot record upload: ", err)
			}
		}
		bs, _ := json.MarshalIndent(ret, "", "  ")
		logger.Info("upload success: ", path, "\n", string(bs))
		fmt.Println(ret.FileId())
		return false
	})
	logger.Info("upload finish, success ", success, " of total ", total)
	if success < total {
		return errors.Errorf("%d of %d uploads failed", total-success, total)
	}
	return nil
}

func handleAccessToken() error {
	ts := tokenTs
	if ts == 0 {
		ts = time.Now().Unix()
	}
	fmt.Println(util.ComputeAccessToken(tokenFileId, ts, clientConfig.SecretKey))
	if clientConfig.HttpBaseUrl != "" {
		fmt.Println(util.AccessUrl(clientConfig.HttpBaseUrl, tokenFileId, ts, clientConfig.SecretKey))
	}
	return nil
}

// handleHistory prints recorded uploads in file id order.
func handleHistory() error {
	j, err := journal.Open(clientConfig.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()
	n := 0
	return j.List(func(rec *journal.Record) bool {
		fmt.Println(rec.UploadedAt.Format("2006-01-02 15:04:05"), rec.FileId, rec.LocalName)
		n++
		return historyLimit <= 0 || n < historyLimit
	})
}

func handleServe() error {
	util.PrintLogo()
	client, manager := api.New(clientConfig)
	defer manager.Close()
	j, err := journal.Open(clientConfig.JournalPath)
	if err != nil {
		logger.Warn("upload journal disabled: ", err)
		j = nil
	} else {
		defer j.Close()
	}
	g := svc.NewGateway(client, j, clientConfig.SecretKey, clientConfig.HttpBaseUrl)
	return svc.StartHttpServer(clientConfig.HttpAddress, g)
}
