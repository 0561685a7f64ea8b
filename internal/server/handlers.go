package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/layoutview/pkg/buildinfo"
	"github.com/matzehuels/layoutview/pkg/cache"
	errs "github.com/matzehuels/layoutview/pkg/errors"
	"github.com/matzehuels/layoutview/pkg/layoutfile"
	"github.com/matzehuels/layoutview/pkg/observability"
	"github.com/matzehuels/layoutview/pkg/pipeline"
)

// Response headers describing a snapshot.
const (
	headerDesignKey = "X-Design-Key"
	headerCache     = "X-Cache"
)

// Multipart form fields of an upload.
const (
	fieldMeta  = "meta"
	fieldFiles = "files"
)

// fileMeta is the uploader's description of one file, matched to the
// files parts by position.
type fileMeta struct {
	ID        int    `json:"id"`
	Type      string `json:"type"`
	FileName  string `json:"filename"`
	IsTech    bool   `json:"isTech"`
	IsLibrary bool   `json:"isLibrary"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

// handleUpload stores the uploaded files for the duration of the request,
// runs them through the pipeline and answers with gzip JSON.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.FormMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, http.StatusRequestEntityTooLarge,
				errs.Wrap(errs.ErrCodeTooLarge, err, "Design upload exceeds %d MB", s.cfg.MaxUploadBytes>>20))
			return
		}
		s.fail(w, r, http.StatusBadRequest, errs.Wrap(errs.ErrCodeInvalidInput, err, "Invalid multipart form"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	metas, parts, err := readForm(r.MultipartForm)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	dir := filepath.Join(s.cfg.UploadDir, "layoutview-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		s.fail(w, r, http.StatusInternalServerError, errs.Wrap(errs.ErrCodeInternal, err, "Failed to prepare upload directory"))
		return
	}
	defer os.RemoveAll(dir)

	files := &layoutfile.DesignFiles{}
	var total int64
	for i, part := range parts {
		f, err := save(dir, i, metas[i], part)
		if err != nil {
			status := http.StatusInternalServerError
			if errs.IsUserError(err) {
				status = http.StatusBadRequest
			}
			s.fail(w, r, status, err)
			return
		}
		if err := files.Add(f); err != nil {
			s.fail(w, r, http.StatusBadRequest, err)
			return
		}
		total += part.Size
	}
	observability.Server().OnUpload(r.Context(), len(parts), total)

	res, err := s.runner.Execute(r.Context(), pipeline.Options{
		Files:    files,
		Compress: true,
		Logger:   s.logger.With("request_id", requestID(r)),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errs.IsUserError(err) {
			status = http.StatusBadRequest
		}
		s.fail(w, r, status, err)
		return
	}

	writeSnapshot(w, res.Key, res.CacheHit, res.JSON)
}

// handleGetDesign answers with a snapshot built by an earlier upload.
func (s *Server) handleGetDesign(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	data, err := cache.Fetch(r.Context(), s.runner.Cache, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		s.fail(w, r, http.StatusNotFound, errs.New(errs.ErrCodeNotFound, "Design %s not found", key))
		return
	}
	if err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	writeSnapshot(w, key, true, data)
}

// =============================================================================
// Upload parsing
// =============================================================================

// readForm pairs the meta array with the files parts.
func readForm(form *multipart.Form) ([]fileMeta, []*multipart.FileHeader, error) {
	values := form.Value[fieldMeta]
	if len(values) != 1 {
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "Invalid or missing files information")
	}
	var metas []fileMeta
	if err := json.Unmarshal([]byte(values[0]), &metas); err != nil {
		return nil, nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "Invalid or missing files information")
	}
	parts := form.File[fieldFiles]
	if len(metas) != len(parts) {
		return nil, nil, errs.New(errs.ErrCodeInvalidInput, "Each uploaded file should have one meta object")
	}
	for _, p := range parts {
		switch strings.ToLower(filepath.Ext(p.Filename)) {
		case errs.ExtLEF, errs.ExtDEF:
		default:
			return nil, nil, errs.New(errs.ErrCodeInvalidFormat, "Only design .lef and .def files are supported")
		}
	}
	return metas, parts, nil
}

// save copies one part to dir/<i>/<name>. Each file gets its own
// directory so the stored base name, which names the library, is the
// uploaded one.
func save(dir string, i int, meta fileMeta, part *multipart.FileHeader) (*layoutfile.DesignFile, error) {
	if err := errs.ValidateDesignFilename(part.Filename); err != nil {
		return nil, err
	}
	failed := func(err error) error {
		return errs.Wrap(errs.ErrCodeInternal, err, "Failed to handle the uploaded file: %s", part.Filename)
	}

	src, err := part.Open()
	if err != nil {
		return nil, failed(err)
	}
	defer src.Close()

	fileDir := filepath.Join(dir, strconv.Itoa(i))
	if err := os.Mkdir(fileDir, 0o700); err != nil {
		return nil, failed(err)
	}
	path := filepath.Join(fileDir, part.Filename)
	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, failed(err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return nil, failed(err)
	}
	if err := dst.Close(); err != nil {
		return nil, failed(err)
	}

	typ := meta.Type
	if typ == "" {
		typ = strings.TrimPrefix(strings.ToLower(filepath.Ext(part.Filename)), ".")
	}
	name := meta.FileName
	if name == "" {
		name = part.Filename
	}
	return &layoutfile.DesignFile{
		ID:        meta.ID,
		Type:      typ,
		FileName:  name,
		FilePath:  path,
		IsTech:    meta.IsTech,
		IsLibrary: meta.IsLibrary,
	}, nil
}

// =============================================================================
// Responses
// =============================================================================

func writeSnapshot(w http.ResponseWriter, key string, hit bool, data []byte) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	if isGzip(data) {
		h.Set("Content-Encoding", "gzip")
	}
	h.Set(headerDesignKey, key)
	if hit {
		h.Set(headerCache, "HIT")
	} else {
		h.Set(headerCache, "MISS")
	}
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// isGzip reports whether data starts with the gzip magic number.
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// fail logs err and answers with {"error": msg}.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "route", routePattern(r), "request_id", requestID(r), "err", err)
		observability.Server().OnError(r.Context(), r.Method, routePattern(r), err)
	} else {
		s.logger.Debug("request rejected", "route", routePattern(r), "status", status, "err", err)
	}
	writeJSON(w, status, map[string]string{"error": clientMessage(err)})
}

// clientMessage keeps the stage prefix a pipeline error carries ("error
// parsing LEF file(s): ") but drops the error code.
func clientMessage(err error) string {
	msg := errs.UserMessage(err)
	code := errs.GetCode(err)
	if code == "" {
		return msg
	}
	full := err.Error()
	if i := strings.Index(full, string(code)+": "); i > 0 {
		return full[:i] + msg
	}
	return msg
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
