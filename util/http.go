package util

import (
	"net/http"

	json "github.com/json-iterator/go"
)

func HttpBadRequestError(w http.ResponseWriter, message string) {
	HttpWriteResponse(w, http.StatusBadRequest, message)
}

func HttpInternalServerError(w http.ResponseWriter, message string) {
	HttpWriteResponse(w, http.StatusInternalServerError, message)
}

// HttpWriteResponse writes an error response as {"code":..,"msg":..}.
func HttpWriteResponse(writer http.ResponseWriter, statusCode int, message string) {
	HttpWriteJson(writer, statusCode, map[string]interface{}{
		"code": statusCode,
		"msg":  message,
	})
}

func HttpWriteJson(writer http.ResponseWriter, statusCode int, v interface{}) {
	bs, err := json.Marshal(v)
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		return
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	writer.Write(bs)
}
