// Package server exposes the helix cipher over HTTP.
//
//	GET  /         service status and endpoint list
//	POST /encrypt  multipart "file" -> encrypted grayscale PNG
//	POST /decrypt  multipart "file" -> decrypted grayscale PNG
//	POST /metrics  multipart "file" -> JSON quality report
//
// Cipher parameters come from the query string: dna_rounds, protein_rounds, r, x0,
// or profile. Missing values fall back to the profile (standard by default).
package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Status is the message returned by GET /.
const Status = "Helix Crypto API is running"

// Server holds the routes' shared state.
type Server struct {
	cfg    Config
	logger *logrus.Logger
}

// New returns a gin engine with all routes registered.
func New(cfg Config, logger *logrus.Logger) *gin.Engine {
	if logger == nil {
		logger = logrus.New()
	}
	s := &Server{cfg: cfg, logger: logger}

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxUploadBytes
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/", s.handleRoot)
	r.POST("/encrypt", s.handleEncrypt)
	r.POST("/decrypt", s.handleDecrypt)
	r.POST("/metrics", s.handleMetrics)
	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := s.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
			"client":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry.Warn(c.Errors.String())
			return
		}
		entry.Info("request")
	}
}
