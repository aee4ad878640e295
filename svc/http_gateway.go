package svc

import (
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/hetianyi/fdfs/api"
	"github.com/hetianyi/fdfs/common"
	"github.com/hetianyi/fdfs/journal"
	"github.com/hetianyi/fdfs/util"
	"github.com/hetianyi/gox/convert"
	"github.com/hetianyi/gox/logger"
	"github.com/logrusorgru/aurora"
	"github.com/pkg/errors"
)

// Uploader is the upload surface of api.Client.
type Uploader interface {
	Upload(group string, src api.Source, ext string, metas []common.NameValuePair) (*common.UploadResult, error)
}

type Gateway struct {
	uploader  Uploader
	journal   *journal.Journal
	secretKey string
	baseUrl   string
}

type uploadResponse struct {
	common.UploadResult
	FileId string `json:"fileId"`
	Url    string `json:"url,omitempty"`
}

type tokenResponse struct {
	FileId string `json:"fileId"`
	Token  string `json:"token"`
	Ts     int64  `json:"ts"`
	Url    string `json:"url,omitempty"`
}

// NewGateway creates the http gateway, j may be nil.
func NewGateway(uploader Uploader, j *journal.Journal, secretKey string, baseUrl string) *Gateway {
	return &Gateway{
		uploader:  uploader,
		journal:   j,
		secretKey: secretKey,
		baseUrl:   baseUrl,
	}
}

func (g *Gateway) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/upload", g.httpUpload).Methods("POST")
	r.HandleFunc("/token", g.httpToken).Methods("GET")
	return r
}

// StartHttpServer serves the gateway until the listener fails.
func StartHttpServer(addr string, g *Gateway) error {
	srv := &http.Server{
		Handler:           g.Router(),
		Addr:              addr,
		ReadHeaderTimeout: time.Second * 15,
		WriteTimeout:      0,
		ReadTimeout:       0,
		MaxHeaderBytes:    1 << 20, // 1MB
	}
	logger.Info("http server listening on ", addr)
	logger.Info(aurora.BrightGreen("::: upload gateway started :::"))
	return srv.ListenAndServe()
}

// httpUpload accepts a multipart "file" field or a raw request body.
func (g *Gateway) httpUpload(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	group := strings.TrimSpace(r.URL.Query().Get("group"))
	ext := strings.TrimSpace(r.URL.Query().Get("ext"))
	var metas []common.NameValuePair
	for _, m := range r.URL.Query()["meta"] {
		kv := strings.SplitN(m, "=", 2)
		p := common.NameValuePair{Name: kv[0]}
		if len(kv) == 2 {
			p.Value = kv[1]
		}
		metas = append(metas, p)
	}

	var (
		body     io.Reader = r.Body
		fileName string
	)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		f, header, err := r.FormFile("file")
		if err != nil {
			util.HttpBadRequestError(w, "missing file field: "+err.Error())
			return
		}
		defer f.Close()
		body = f
		fileName = header.Filename
	}
	if ext == "" && fileName != "" {
		ext = strings.TrimPrefix(filepath.Ext(fileName), ".")
	}

	tmp, err := spool(body)
	if err != nil {
		util.HttpInternalServerError(w, err.Error())
		return
	}
	defer os.Remove(tmp)

	logger.Debug("begin to upload file ", fileName, " to group \"", group, "\"")
	ret, err := g.uploader.Upload(group, api.FileSource(tmp), ext, metas)
	if err != nil {
		logger.Error("upload failed: ", err)
		switch {
		case errors.Is(err, common.ErrUploadRejected):
			util.HttpWriteResponse(w, http.StatusConflict, err.Error())
		case errors.Is(err, common.ErrDeadlineExceeded):
			util.HttpWriteResponse(w, http.StatusBadGateway, err.Error())
		default:
			util.HttpInternalServerError(w, err.Error())
		}
		return
	}
	if g.journal != nil {
		if err := g.journal.Record(fileName, ret); err != nil {
			logger.Warn("cannot record upload ", ret.FileId(), ": ", err)
		}
	}
	util.HttpWriteJson(w, http.StatusOK, &uploadResponse{
		UploadResult: *ret,
		FileId:       ret.FileId(),
		Url:          ret.Url(g.baseUrl),
	})
}

// spool copies the upload into a temporary file so it can be streamed again on retry.
func spool(r io.Reader) (string, error) {
	tmp, err := ioutil.TempFile("", "fdfs-upload-")
	if err != nil {
		return "", err
	}
	defer tmp.Close()
	if _, err := io.Copy(tmp, r); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}

func (g *Gateway) httpToken(w http.ResponseWriter, r *http.Request) {
	fileId := strings.TrimSpace(r.URL.Query().Get("fileId"))
	if fileId == "" {
		util.HttpBadRequestError(w, "missing fileId")
		return
	}
	ts := time.Now().Unix()
	if s := r.URL.Query().Get("ts"); s != "" {
		v, err := convert.StrToInt64(s)
		if err != nil {
			util.HttpBadRequestError(w, "invalid ts \""+s+"\"")
			return
		}
		ts = v
	}
	resp := &tokenResponse{
		FileId: fileId,
		Token:  util.ComputeAccessToken(fileId, ts, g.secretKey),
		Ts:     ts,
	}
	if g.baseUrl != "" {
		resp.Url = util.AccessUrl(g.baseUrl, fileId, ts, g.secretKey)
	}
	util.HttpWriteJson(w, http.StatusOK, resp)
}
