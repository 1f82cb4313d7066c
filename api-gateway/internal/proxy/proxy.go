// Package proxy forwards gateway requests to the owning backend service.
package proxy

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vasusumeet/Personal-Finance-App/shared/middleware"
)

// maxBodyBytes bounds request bodies buffered by the gateway.
const maxBodyBytes = 1 << 20

// hopHeaders apply to a single connection and are not forwarded.
var hopHeaders = map[string]bool{
	"Connection":          true,
	"Keep-Alive":          true,
	"Proxy-Authenticate":  true,
	"Proxy-Authorization": true,
	"Te":                  true,
	"Trailer":             true,
	"Transfer-Encoding":   true,
	"Upgrade":             true,
}

type Forwarder struct {
	client *http.Client
	logger *slog.Logger
}

func NewForwarder(timeout time.Duration, logger *slog.Logger) *Forwarder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Forwarder{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// To returns a handler that replays the request against serviceURL with the
// same path and query and copies the response back.
func (f *Forwarder) To(serviceURL string) gin.HandlerFunc {
	serviceURL = strings.TrimSuffix(serviceURL, "/")

	return func(c *gin.Context) {
		targetURL := serviceURL + c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			targetURL += "?" + c.Request.URL.RawQuery
		}

		var body io.Reader
		if c.Request.Body != nil {
			bodyBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
			if err != nil {
				middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
				return
			}
			if len(bodyBytes) > maxBodyBytes {
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Request body too large", "error": "validation_error"})
				return
			}
			body = bytes.NewReader(bodyBytes)
		}

		req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, body)
		if err != nil {
			middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create request")
			return
		}

		copyHeaders(req.Header, c.Request.Header)
		if rid := middleware.GetRequestID(c); rid != "" {
			req.Header.Set(middleware.RequestIDHeader, rid)
		}
		req.Header.Set("X-Forwarded-For", c.ClientIP())

		resp, err := f.client.Do(req)
		if err != nil {
			f.logger.ErrorContext(c.Request.Context(), "error proxying request",
				"target", serviceURL,
				"path", c.Request.URL.Path,
				"error", err)
			c.JSON(http.StatusBadGateway, gin.H{"message": "Service unavailable", "error": "bad_gateway"})
			return
		}
		defer resp.Body.Close()

		copyHeaders(c.Writer.Header(), resp.Header)
		c.Status(resp.StatusCode)
		if _, err := io.Copy(c.Writer, resp.Body); err != nil {
			f.logger.WarnContext(c.Request.Context(), "failed to stream response", "target", serviceURL, "error", err)
		}
	}
}

// copyHeaders replaces each header of dst present in src.
func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if hopHeaders[http.CanonicalHeaderKey(key)] {
			continue
		}
		dst.Del(key)
		for _, value := range values {
			dst.Add(key, value)
		}
	}
}
