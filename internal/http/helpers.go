package http

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// clientIP extracts the client IP, considering proxies.
func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		// First hop is the client
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		return strings.TrimSpace(ip)
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	// RemoteAddr carries the ephemeral port; rate limit buckets key on the
	// host alone
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sanitizeInput removes potentially dangerous characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// parsePage extracts the page number from query parameters, defaulting to 1.
func parsePage(r *http.Request) int {
	v := strings.TrimSpace(r.URL.Query().Get("page"))
	if v == "" {
		return 1
	}
	page, err := strconv.Atoi(v)
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func summaryCachePrefix(userID int64) string {
	return "summary:" + strconv.FormatInt(userID, 10) + ":"
}

func summaryCacheKey(userID int64, typ core.TransactionType) string {
	return summaryCachePrefix(userID) + string(typ)
}

func trendCacheKey(userID int64) string {
	return "trend:" + strconv.FormatInt(userID, 10)
}

// render executes a template against the base layout.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded",
			log.FieldPath, r.URL.Path,
			log.FieldComponent, log.ComponentTemplate)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template execution failed",
			log.FieldError, err,
			log.FieldOperation, log.OpRender,
			log.FieldComponent, log.ComponentTemplate,
			"template", name)
	}
}
