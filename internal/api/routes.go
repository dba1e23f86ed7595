package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/heimdex/heimdex-editor/internal/backend"
	"github.com/heimdex/heimdex-editor/internal/session"
)

func NewRouter(cfg ServerConfig) *chi.Mux {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}

	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/health", healthHandler(cfg))
	r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.History, cfg.Logger))

		r.Get("/exports", listExportsHandler(cfg))
		r.Post("/sessions", createSessionHandler(cfg))

		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", getSessionHandler(cfg))
			r.Delete("/", endSessionHandler(cfg))

			r.Post("/media", uploadHandler(cfg))

			r.Post("/clips", addClipHandler(cfg))
			r.Put("/clips/{index}", updateClipHandler(cfg))
			r.Post("/clips/{index}/select", selectClipHandler(cfg))
			r.Post("/clips/{index}/play", playClipHandler(cfg))
			r.Delete("/selection", clearSelectionHandler(cfg))

			r.Post("/pointer", pointerHandler(cfg))

			r.Post("/seek", seekHandler(cfg))
			r.Post("/player/position", playerPositionHandler(cfg))
			r.Get("/player/seek", playerSeekHandler(cfg))

			r.Post("/export", exportHandler(cfg))
			r.Get("/export.edl", edlHandler(cfg))
		})
	})

	return r
}

// sessionHandler resolves the {id} URL parameter before calling fn.
func sessionHandler(cfg ServerConfig, fn func(w http.ResponseWriter, r *http.Request, s *session.Session)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := cfg.Sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeSessionError(w, err)
			return
		}
		fn(w, r, s)
	}
}

func clipIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "clip index must be an integer", "BAD_REQUEST")
		return 0, false
	}
	return idx, true
}

func writeSnapshot(w http.ResponseWriter, status int, s *session.Session) {
	WriteJSON(w, status, SnapshotToResponse(s.Snapshot()))
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  cfg.Version,
			UptimeS:  int64(time.Since(cfg.StartTime).Seconds()),
			Sessions: cfg.Sessions.Count(),
		})
	}
}

func createSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeSnapshot(w, http.StatusCreated, cfg.Sessions.Create())
	}
}

func getSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		writeSnapshot(w, http.StatusOK, s)
	})
}

func endSessionHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := cfg.Sessions.End(chi.URLParam(r, "id")); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// uploadHandler streams the "video" part of a multipart body to the backend.
func uploadHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

		mr, err := r.MultipartReader()
		if err != nil {
			WriteError(w, http.StatusBadRequest, "multipart body required", "BAD_REQUEST")
			return
		}

		for {
			part, err := mr.NextPart()
			if errors.Is(err, io.EOF) {
				WriteError(w, http.StatusBadRequest, "video field is required", "BAD_REQUEST")
				return
			}
			if err != nil {
				WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
				return
			}
			if part.FormName() != backend.UploadField {
				part.Close()
				continue
			}

			name := part.FileName()
			if name == "" {
				name = "upload.mp4"
			}
			_, err = s.Upload(r.Context(), name, part)
			part.Close()
			if err != nil {
				cfg.Logger.Warn("upload rejected", "session_id", s.ID(), "error", err)
				writeSessionError(w, err)
				return
			}
			writeSnapshot(w, http.StatusCreated, s)
			return
		}
	})
}

func addClipHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var req ClipRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if _, err := s.AddClip(*req.Start, *req.End); err != nil {
			writeSessionError(w, err)
			return
		}
		writeSnapshot(w, http.StatusCreated, s)
	})
}

func updateClipHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		idx, ok := clipIndex(w, r)
		if !ok {
			return
		}
		var req ClipRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if err := s.UpdateClip(idx, *req.Start, *req.End); err != nil {
			writeSessionError(w, err)
			return
		}
		writeSnapshot(w, http.StatusOK, s)
	})
}

func selectClipHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		idx, ok := clipIndex(w, r)
		if !ok {
			return
		}
		clip, err := s.SelectClip(idx)
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, SelectResponse{Index: idx, Start: clip.Start, End: clip.End})
	})
}

func clearSelectionHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		s.ClearSelection()
		writeSnapshot(w, http.StatusOK, s)
	})
}

func playClipHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		idx, ok := clipIndex(w, r)
		if !ok {
			return
		}
		if err := s.PlayClip(idx); err != nil {
			writeSessionError(w, err)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})
}

func listExportsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				WriteError(w, http.StatusBadRequest, "limit must be a positive integer", "BAD_REQUEST")
				return
			}
			limit = n
		}

		exports, err := cfg.History.ListExports(r.Context(), limit)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "failed to list exports", "INTERNAL_ERROR")
			return
		}

		resp := ExportsResponse{Exports: make([]ExportRecordResponse, len(exports))}
		for i, e := range exports {
			resp.Exports[i] = ExportRecordToResponse(e)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}
