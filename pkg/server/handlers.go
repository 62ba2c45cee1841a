package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/matzehuels/ioschema/pkg/assemble"
	"github.com/matzehuels/ioschema/pkg/buildinfo"
	"github.com/matzehuels/ioschema/pkg/catalog"
	"github.com/matzehuels/ioschema/pkg/errors"
	"github.com/matzehuels/ioschema/pkg/pipeline"
	"github.com/matzehuels/ioschema/pkg/points"
)

// Multipart field names. The second name of each pair is the one the
// legacy web form posts.
var (
	fieldPoints   = []string{"points", "fichierJson"}
	fieldModules  = []string{"modules", "refs"}
	fieldParams   = []string{"params"}
	fieldTemplate = []string{"template", "modele"}
	fieldDatabase = []string{"database"}
)

var endpoints = []string{
	"GET /cards",
	"GET /template",
	"POST /template",
	"GET /catalog/download",
	"POST /catalog/upload",
	"POST /generate",
	"GET /generations",
}

type indexBody struct {
	Service   string         `json:"service"`
	Build     buildinfo.Info `json:"build"`
	Endpoints []string       `json:"endpoints"`
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, indexBody{"ioschema", buildinfo.Get(), endpoints})
}

func (s *Server) handleCards(w http.ResponseWriter, r *http.Request) {
	specs, err := s.cfg.Catalog.All(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.Group(specs))
}

func (s *Server) handleTemplateInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.cfg.Templates.Info(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleTemplateUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := s.formFile(w, r, fieldTemplate)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer file.Close()
	if err := errors.ValidateUploadName(header.Filename, ".drawio"); err != nil {
		s.writeError(w, r, err)
		return
	}

	info, err := s.cfg.Templates.Update(r.Context(), file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.cfg.Logger.Info("template updated", "upload", header.Filename, "pages", len(info.Pages), "size", info.Size)
	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleCatalogDownload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.CatalogFile == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "catalog transfer is not available"))
		return
	}
	// Buffer so a read failure can still produce a JSON error.
	var buf bytes.Buffer
	if _, err := s.cfg.CatalogFile.WriteTo(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-sqlite3")
	w.Header().Set("Content-Disposition", `attachment; filename="database.sqlite3"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleCatalogUpload(w http.ResponseWriter, r *http.Request) {
	if s.cfg.CatalogFile == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeUnsupported, "catalog transfer is not available"))
		return
	}
	file, header, err := s.formFile(w, r, fieldDatabase)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	defer file.Close()
	if err := errors.ValidateUploadName(header.Filename, ".sqlite3"); err != nil {
		s.writeError(w, r, err)
		return
	}

	n, err := s.cfg.CatalogFile.Replace(r.Context(), file)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if s.cfg.OnCatalogReplaced != nil {
		if err := s.cfg.OnCatalogReplaced(r.Context()); err != nil {
			s.cfg.Logger.Warn("post-upload hook failed", "error", err)
		}
	}
	s.cfg.Logger.Info("catalog replaced", "upload", header.Filename, "size", n)
	writeJSON(w, http.StatusOK, map[string]any{"size": n})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	opts, err := s.parseGenerate(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.cfg.Runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pipeline.OutputName))
	w.Header().Set("X-Generation-ID", result.ID)
	if n := len(result.Warnings); n > 0 {
		w.Header().Set("X-Generation-Warnings", strconv.Itoa(n))
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Document)
}

func (s *Server) parseGenerate(w http.ResponseWriter, r *http.Request) (pipeline.Options, error) {
	var opts pipeline.Options

	file, _, err := s.formFile(w, r, fieldPoints)
	if err != nil {
		return opts, err
	}
	defer file.Close()
	if opts.Points, err = points.Decode(file); err != nil {
		return opts, err
	}

	if v := formValue(r, fieldModules); v != "" {
		if err := json.Unmarshal([]byte(v), &opts.Modules); err != nil {
			return opts, errors.Wrap(errors.ErrCodeMalformedInput, err, "modules must be a JSON array of identifiers")
		}
	}
	if v := formValue(r, fieldParams); v != "" {
		var params assemble.ProjectParams
		if err := json.Unmarshal([]byte(v), &params); err != nil {
			return opts, errors.Wrap(errors.ErrCodeMalformedInput, err, "params must be a JSON object")
		}
		opts.Params = params
	}
	return opts, nil
}

func (s *Server) handleGenerations(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}
	recs, err := s.cfg.Journal.Recent(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if recs == nil {
		writeJSON(w, http.StatusOK, []any{})
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// formFile parses the multipart body once and returns the first present
// file among names.
func (s *Server) formFile(w http.ResponseWriter, r *http.Request, names []string) (multipart.File, *multipart.FileHeader, error) {
	if r.MultipartForm == nil {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUpload)
		if err := r.ParseMultipartForm(s.cfg.MaxUpload); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "expected a multipart form")
		}
	}
	for _, name := range names {
		if f, h, err := r.FormFile(name); err == nil {
			return f, h, nil
		}
	}
	return nil, nil, errors.New(errors.ErrCodeInvalidInput, "missing file field %q", names[0])
}

func formValue(r *http.Request, names []string) string {
	for _, name := range names {
		if v := r.FormValue(name); v != "" {
			return v
		}
	}
	return ""
}
