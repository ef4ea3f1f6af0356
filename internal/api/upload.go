package api

import (
	"errors"
	"io"
	"net/http"
)

const maxUploadSize = 32 << 20 // 32MB

func handleUpload(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		defer r.Body.Close()

		file, header, err := r.FormFile("file")
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				httpError(w, http.StatusRequestEntityTooLarge, "upload exceeds %d bytes", tooLarge.Limit)
				return
			}
			httpError(w, http.StatusUnprocessableEntity, "multipart field \"file\" is required")
			return
		}
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			httpError(w, http.StatusUnprocessableEntity, "reading upload: %v", err)
			return
		}

		res, err := deps.Service.Upload(r.Context(), header.Filename, data)
		if err != nil {
			deps.Logger.Error("upload failed", "filename", header.Filename, "error", err)
			httpError(w, http.StatusInternalServerError, "%v", err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
