package api

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/libresine/libresine-server/internal/http/response"
	"github.com/libresine/libresine-server/internal/importer"
)

// maxImportSize bounds uploaded import files. Catalog exports are small;
// anything past this is not a movie list.
const maxImportSize = 10 << 20 // 10MB

func (s *Server) registerImportRoutes() {
	// Upload endpoint uses chi directly for multipart form handling.
	s.router.Post("/api/v1/import", s.handleImportUpload)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-import-session",
		Method:      http.MethodGet,
		Path:        "/api/v1/import/{id}",
		Summary:     "Get import session",
		Tags:        []string{"Import"},
	}, s.handleGetImportSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "confirm-import",
		Method:      http.MethodPost,
		Path:        "/api/v1/import/{id}/confirm",
		Summary:     "Confirm import",
		Description: "Approves whichever gate the session is waiting on (large batch or duplicates)",
		Tags:        []string{"Import"},
	}, s.handleConfirmImport)

	huma.Register(s.api, huma.Operation{
		OperationID:   "abort-import",
		Method:        http.MethodPost,
		Path:          "/api/v1/import/{id}/abort",
		Summary:       "Abort import",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Import"},
	}, s.handleAbortImport)
}

// === DTOs ===

// ImportSessionInput identifies an import session.
type ImportSessionInput struct {
	ID string `path:"id" doc:"Import session id"`
}

// ImportSessionOutput wraps the session state.
type ImportSessionOutput struct {
	Body importer.Session
}

// AbortImportOutput is an empty 204.
type AbortImportOutput struct{}

// === Handlers ===

// handleImportUpload validates an uploaded movie file and opens an import
// session. POST /api/v1/import
// Content-Type: multipart/form-data with "file" field, or a raw JSON body
// with the filename in the X-Filename header.
func (s *Server) handleImportUpload(w http.ResponseWriter, r *http.Request) {
	// RealIP middleware rewrites RemoteAddr, so the key survives proxies.
	if !s.importLimiter.Allow(r.RemoteAddr) {
		response.TooManyRequests(w, "Too many import attempts. Please wait a moment and try again.", s.logger)
		return
	}

	filename, mimeType, data, err := readImportFile(r)
	if err != nil {
		response.BadRequest(w, err.Error(), s.logger)
		return
	}

	session, err := s.importer.Start(r.Context(), filename, mimeType, data)
	if err != nil {
		s.logger.Error("Failed to start import session", "error", err, "file", filename)
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, session, s.logger)
}

// readImportFile extracts the upload and its media type from either a
// multipart form or a raw body. Filename and media type validation belong
// to the import validator, not here.
func readImportFile(r *http.Request) (string, string, []byte, error) {
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxImportSize); err != nil {
			return "", "", nil, errBadUpload("Failed to parse form data")
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", "", nil, errBadUpload("No file uploaded. Use 'file' field in multipart form")
		}
		defer file.Close()

		if header.Size > maxImportSize {
			return "", "", nil, errBadUpload("File too large. Maximum size is 10MB")
		}
		data, err := io.ReadAll(io.LimitReader(file, maxImportSize))
		if err != nil {
			return "", "", nil, errBadUpload("Failed to read uploaded file")
		}
		return header.Filename, header.Header.Get("Content-Type"), data, nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize+1))
	if err != nil {
		return "", "", nil, errBadUpload("Failed to read request body")
	}
	if len(data) > maxImportSize {
		return "", "", nil, errBadUpload("File too large. Maximum size is 10MB")
	}
	filename := r.Header.Get("X-Filename")
	if filename == "" {
		filename = "upload.json"
	}
	return filename, contentType, data, nil
}

type errBadUpload string

func (e errBadUpload) Error() string { return string(e) }

func (s *Server) handleGetImportSession(_ context.Context, input *ImportSessionInput) (*ImportSessionOutput, error) {
	session, err := s.importer.Get(input.ID)
	if err != nil {
		return nil, err
	}
	return &ImportSessionOutput{Body: *session}, nil
}

// handleConfirmImport approves the pending gate. The session state says
// which question the client answered, so one endpoint serves both gates.
func (s *Server) handleConfirmImport(ctx context.Context, input *ImportSessionInput) (*ImportSessionOutput, error) {
	session, err := s.importer.Get(input.ID)
	if err != nil {
		return nil, err
	}

	switch session.State {
	case importer.StateAwaitingLargeConfirm:
		session, err = s.importer.ConfirmLarge(ctx, input.ID)
	case importer.StateAwaitingDuplicateConfirm:
		session, err = s.importer.ConfirmDuplicates(ctx, input.ID)
	default:
		return nil, importer.ErrWrongState
	}
	if err != nil {
		return nil, err
	}
	return &ImportSessionOutput{Body: *session}, nil
}

func (s *Server) handleAbortImport(_ context.Context, input *ImportSessionInput) (*AbortImportOutput, error) {
	s.importer.Abort(input.ID)
	return &AbortImportOutput{}, nil
}
