package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"coachpay/internal/core"
	applog "coachpay/internal/log"
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": s.now().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
	})
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.ready != nil {
		if err := s.ready(ctx); err != nil {
			checks["backend"] = fmt.Sprintf("failed: %v", err)
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
		} else {
			checks["backend"] = "ok"
		}
	} else {
		checks["backend"] = "ok"
	}

	checks["sessions"] = map[string]interface{}{"active": s.sessions.Size()}
	checks["rate_limiter"] = map[string]interface{}{"active_clients": s.limiter.ActiveClients()}

	writeJSON(w, httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": s.now().Format(time.RFC3339),
		"checks":    checks,
	})
}

type blockData struct {
	Index  int
	Number int
	Month  core.Month
}

type pageData struct {
	Access     AccessLevel
	Error      string
	Blocks     []blockData
	Categories []core.Category
	Roles      []core.Role
	Months     []core.Month
	Year       int
}

func (s *Server) newPageData(access AccessLevel, blocks int) pageData {
	current := core.Month(s.now().Month())
	data := pageData{
		Access:     access,
		Categories: core.Categories,
		Roles:      core.Roles,
		Months:     core.Months(),
		Year:       s.records.SeasonYear(),
	}
	for i := 0; i < blocks; i++ {
		data.Blocks = append(data.Blocks, blockData{Index: i, Number: i + 1, Month: current})
	}
	return data
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	access := AccessNone
	if sess := s.sessions.Lookup(r); sess != nil {
		access = sess.Access()
	}
	s.render(w, r, http.StatusOK, "index", s.newPageData(access, 1))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		BadRequestError(msgBadRequest).Write(w)
		return
	}
	level := s.gate.Check(r.PostForm.Get("phrase"))
	logger := applog.FromContext(r.Context())
	if level == AccessNone {
		logger.Warn("Access phrase rejected",
			applog.FieldOperation, applog.OpLogin,
			applog.FieldClientIP, s.clientIP.ClientIP(r))
		data := s.newPageData(AccessNone, 1)
		data.Error = msgWrongPhrase
		s.render(w, r, http.StatusUnauthorized, "index", data)
		return
	}

	sess := s.sessions.Start(w, r)
	sess.SetAccess(level)
	logger.Info("Access granted",
		applog.FieldOperation, applog.OpLogin,
		applog.FieldAccess, level.String())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render executes a named template into a buffer first so a failing
// template never sends a half written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data interface{}) {
	if s.templates == nil {
		InternalServerError("templates not loaded").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).Error("Template execution failed",
			applog.FieldOperation, applog.OpRender,
			"template", name,
			applog.FieldError, err)
		InternalServerError("Error al mostrar la página.").Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
