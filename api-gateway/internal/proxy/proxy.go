package proxy

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/corebank/banking/shared/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Upstream forwards gin requests unchanged to one backend service.
type Upstream struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

func NewUpstream(baseURL string, timeout time.Duration, logger *zap.Logger) *Upstream {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Upstream{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(zap.String("upstream", baseURL)),
	}
}

func (u *Upstream) Handle(c *gin.Context) {
	// Build target URL
	targetURL := u.baseURL + c.Request.URL.Path
	if c.Request.URL.RawQuery != "" {
		targetURL += "?" + c.Request.URL.RawQuery
	}

	var body io.Reader
	if c.Request.Body != nil {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			middleware.RespondWithError(c, http.StatusBadRequest, "Failed to read request body")
			return
		}
		body = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), c.Request.Method, targetURL, body)
	if err != nil {
		middleware.RespondWithError(c, http.StatusInternalServerError, "Failed to create request")
		return
	}
	for key, values := range c.Request.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if id := middleware.GetRequestID(c); id != "" {
		req.Header.Set(middleware.RequestIDHeader, id)
	}

	resp, err := u.client.Do(req)
	if err != nil {
		u.logger.Warn("upstream request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		middleware.RespondWithError(c, http.StatusBadGateway, "Service unavailable")
		return
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadGateway, "Failed to read response")
		return
	}

	for key, values := range resp.Header {
		// CORS is answered by the gateway itself
		if key == "Content-Length" || strings.HasPrefix(key, "Access-Control-") {
			continue
		}
		for _, value := range values {
			c.Writer.Header().Add(key, value)
		}
	}
	c.Data(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
}
