// Package server is the thin HTTP layer over the pipeline: file upload in,
// response DTO out. It always answers with a DTO, never an unhandled fault.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"pkt.systems/pslog"

	"pkt.systems/soapgen/internal/pipeline"
)

const maxUploadBytes = 10 << 20

// GenerationResponse is the wire DTO for both generation and feedback calls.
type GenerationResponse struct {
	GenerationID string `json:"generationId"`
	XMLContent   string `json:"xmlContent,omitempty"`
	ErrorMessage string `json:"errorMessage,omitempty"`
}

type feedbackRequest struct {
	Feedback string `json:"feedback"`
}

// Server exposes the pipeline over HTTP.
type Server struct {
	pipe           *pipeline.Pipeline
	logger         pslog.Base
	allowedOrigins []string
}

// New builds a Server around an existing pipeline.
func New(pipe *pipeline.Pipeline, logger pslog.Base, allowedOrigins []string) *Server {
	return &Server{pipe: pipe, logger: logger, allowedOrigins: allowedOrigins}
}

// Handler returns the routed handler with CORS applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("POST /api/generations", s.handleGenerate)
	mux.HandleFunc("POST /api/generations/{id}/feedback", s.handleFeedback)
	return s.cors(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, GenerationResponse{ErrorMessage: "expected multipart form with wsdl_file and test_options"})
		return
	}
	file, header, err := r.FormFile("wsdl_file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerationResponse{ErrorMessage: "wsdl_file is required"})
		return
	}
	defer file.Close()
	wsdlBytes, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, GenerationResponse{ErrorMessage: "failed to read wsdl_file"})
		return
	}

	categories := parseCategories(r.MultipartForm.Value["test_options"])
	if len(categories) == 0 {
		writeJSON(w, http.StatusBadRequest, GenerationResponse{ErrorMessage: "at least one test_options value is required"})
		return
	}

	fileName := header.Filename
	if fileName == "" {
		fileName = "service.wsdl"
	}

	res := s.pipe.Generate(r.Context(), pipeline.Request{
		WSDL:       string(wsdlBytes),
		FileName:   fileName,
		Categories: categories,
	})
	writeResult(w, res)
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Feedback) == "" {
		writeJSON(w, http.StatusBadRequest, GenerationResponse{GenerationID: id, ErrorMessage: "feedback text is required"})
		return
	}
	res := s.pipe.Feedback(r.Context(), id, req.Feedback)
	writeResult(w, res)
}

// writeResult maps a pipeline result onto the DTO. Failures are reported in
// the body with status 200, mirroring the fixed transport contract.
func writeResult(w http.ResponseWriter, res pipeline.Result) {
	out := GenerationResponse{GenerationID: res.GenerationID}
	if res.Failed() {
		out.ErrorMessage = res.Err.Error()
	} else {
		out.XMLContent = res.Project
	}
	writeJSON(w, http.StatusOK, out)
}

// parseCategories accepts repeated form values and comma-separated lists,
// preserving order and dropping duplicates.
func parseCategories(values []string) []string {
	var out []string
	seen := map[string]bool{}
	for _, v := range values {
		for _, c := range strings.Split(v, ",") {
			c = strings.TrimSpace(c)
			if c == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
