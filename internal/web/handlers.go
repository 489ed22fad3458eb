package web

import (
	"net/http"
	"strings"

	"csvimport/internal/errs"
	"csvimport/internal/runner"
	"csvimport/internal/schema"
	"csvimport/internal/source"
)

// ScanResponse is the body of a successful POST /scan.
type ScanResponse struct {
	schema.Columns
	SourceDigest string `json:"sourceDigest"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	src, _, ok := s.spoolUpload(w, r)
	if !ok {
		return
	}
	defer src.Close()

	cols, err := runner.ScanOnly(r.Context(), src, s.cfg.Import)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, ScanResponse{Columns: cols, SourceDigest: src.Digest()})
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	src, filename, ok := s.spoolUpload(w, r)
	if !ok {
		return
	}
	defer src.Close()

	table := strings.TrimSpace(r.FormValue("table"))
	if table == "" {
		table = schema.TableName(filename)
	}

	if err := s.writer.Acquire(r.Context(), 1); err != nil {
		respondError(w, r, err, nil)
		return
	}
	defer s.writer.Release(1)

	sum, err := runner.RunImport(r.Context(), runner.RunInput{
		Source:       src,
		SourceDigest: src.Digest(),
		DBPath:       s.cfg.DBPath,
		Table:        table,
		Config:       s.cfg.Import,
	})
	if err != nil {
		respondError(w, r, err, sum)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// spoolUpload reads the multipart "file" field into a spool file. On failure
// it writes the response itself and returns ok=false.
func (s *Server) spoolUpload(w http.ResponseWriter, r *http.Request) (*source.File, string, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadSize)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadSize); err != nil {
		badRequest(w, r, "file too large or invalid form")
		return nil, "", false
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()
	file, header, err := r.FormFile("file")
	if err != nil {
		badRequest(w, r, "no file provided")
		return nil, "", false
	}
	src, err := source.Spool(r.Context(), file, s.cfg.SpoolDir)
	file.Close()
	if err != nil {
		respondError(w, r, errs.Wrap(errs.KindSourceFormat, "spool upload", err), nil)
		return nil, "", false
	}
	return src, header.Filename, true
}
