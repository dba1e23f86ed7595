package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/heimdex/heimdex-editor/internal/export"
	"github.com/heimdex/heimdex-editor/internal/interaction"
	"github.com/heimdex/heimdex-editor/internal/session"
)

func pointerHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var req PointerRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		needsIndex := req.Type != PointerMove && req.Type != PointerRelease
		if needsIndex && req.Index == nil {
			WriteError(w, http.StatusBadRequest, "index is required for "+req.Type, "BAD_REQUEST")
			return
		}

		var applied bool
		switch req.Type {
		case PointerPressBody:
			applied = s.PressBody(*req.Index)
		case PointerPressLeft:
			applied = s.PressEdge(*req.Index, interaction.EdgeLeft)
		case PointerPressRight:
			applied = s.PressEdge(*req.Index, interaction.EdgeRight)
		case PointerMove:
			x, ok := req.offset()
			if !ok {
				WriteError(w, http.StatusBadRequest, "x or client_x is required for move", "BAD_REQUEST")
				return
			}
			applied = s.Move(x)
		case PointerRelease:
			s.Release()
			applied = true
		case PointerDoubleActivate:
			if _, err := s.DoubleActivate(*req.Index); err != nil {
				writeSessionError(w, err)
				return
			}
			applied = true
		}

		WriteJSON(w, http.StatusOK, PointerResponse{
			Applied: applied,
			Session: SnapshotToResponse(s.Snapshot()),
		})
	})
}

func (p PointerRequest) offset() (float64, bool) {
	if p.X != nil {
		return *p.X, true
	}
	if p.ClientX != nil {
		return interaction.PointerX(*p.ClientX, p.TimelineLeft), true
	}
	return 0, false
}

func seekHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var req SeekRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		s.Seek(*req.Time)
		w.WriteHeader(http.StatusAccepted)
	})
}

func playerPositionHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		var req PlayerPositionRequest
		if err := decodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}
		if req.Time == nil {
			s.ReportPlayer(0, false)
		} else {
			s.ReportPlayer(*req.Time, req.Ready)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func playerSeekHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		t, ok := s.TakeSeek()
		WriteJSON(w, http.StatusOK, PlayerSeekResponse{Pending: ok, Time: t})
	})
}

func exportHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		resp, err := s.Export(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, ExportResultResponse{Status: resp.Status, Outputs: resp.Outputs})
	})
}

// edlHandler renders the clip set as a CMX3600 EDL download. Query
// parameters: title, fps (default 30).
func edlHandler(cfg ServerConfig) http.HandlerFunc {
	return sessionHandler(cfg, func(w http.ResponseWriter, r *http.Request, s *session.Session) {
		fps := 30.0
		if v := r.URL.Query().Get("fps"); v != "" {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil || f <= 0 || f > 120 {
				WriteError(w, http.StatusBadRequest, "fps must be between 0 and 120", "BAD_REQUEST")
				return
			}
			fps = f
		}

		title := r.URL.Query().Get("title")
		edl, err := s.EDL(title, fps)
		if err != nil {
			writeSessionError(w, err)
			return
		}

		name := export.SanitizeName(title, 120)
		if name == "" {
			name = "heimdex_export"
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".edl"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(edl))
	})
}
