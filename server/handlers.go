package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	helix "github.com/BackendStack21/helix-go"
	"github.com/BackendStack21/helix-go/core"
	"github.com/BackendStack21/helix-go/imageio"
	"github.com/BackendStack21/helix-go/metrics"
	"github.com/BackendStack21/helix-go/pipeline"
)

var errUploadTooLarge = errors.New("upload exceeds size limit")

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    Status,
		"version":   helix.Version,
		"endpoints": []string{"/encrypt", "/decrypt", "/metrics"},
	})
}

func (s *Server) handleEncrypt(c *gin.Context) {
	s.transform(c, "encrypted.png", s.decodeScaled, pipeline.EncryptGrid)
}

// Ciphertext is decoded at its exact size; resampling it would corrupt the decryption.
func (s *Server) handleDecrypt(c *gin.Context) {
	s.transform(c, "decrypted.png", s.decodeExact, pipeline.DecryptGrid)
}

type decodeFunc func(io.Reader) (*helix.Grid, string, error)

func (s *Server) decodeScaled(r io.Reader) (*helix.Grid, string, error) {
	return imageio.Decode(r, s.cfg.MaxDimension)
}

func (s *Server) decodeExact(r io.Reader) (*helix.Grid, string, error) {
	return imageio.DecodeExact(r, s.cfg.MaxDimension)
}

func (s *Server) transform(c *gin.Context, filename string, decode decodeFunc, fn func(*helix.Grid, helix.Params) (*helix.Grid, error)) {
	params, err := parseParams(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	g, ok := s.readUpload(c, decode)
	if !ok {
		return
	}

	out, err := fn(g, params)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	s.logger.WithFields(logrus.Fields{
		"pixels":         len(g.Pix),
		"dna_rounds":     params.DNARounds,
		"protein_rounds": params.ProteinRounds,
	}).Debug(filename)

	var buf bytes.Buffer
	if err := imageio.EncodePNG(&buf, out); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleMetrics(c *gin.Context) {
	params, err := parseParams(c)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	g, ok := s.readUpload(c, s.decodeScaled)
	if !ok {
		return
	}

	enc, err := pipeline.EncryptGrid(g, params)
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	dec, err := pipeline.DecryptGrid(enc, params)
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	report, err := metrics.Evaluate(g, enc, dec, pipeline.Encrypt,
		params.DNARounds, params.ProteinRounds, params.R, params.X0)
	if err != nil {
		fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// readUpload decodes the multipart "file" field. On failure it writes the response.
func (s *Server) readUpload(c *gin.Context, decode decodeFunc) (*helix.Grid, bool) {
	if c.Request.ContentLength > s.cfg.MaxUploadBytes {
		fail(c, http.StatusRequestEntityTooLarge, errUploadTooLarge)
		return nil, false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(c, http.StatusRequestEntityTooLarge, errUploadTooLarge)
		} else {
			fail(c, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		}
		return nil, false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return nil, false
	}
	defer f.Close()

	g, _, err := decode(f)
	if errors.Is(err, imageio.ErrImageTooLarge) {
		fail(c, http.StatusRequestEntityTooLarge, err)
		return nil, false
	}
	if err != nil {
		fail(c, http.StatusBadRequest, err)
		return nil, false
	}
	return g, true
}

// parseParams reads cipher parameters from the query string and validates them.
func parseParams(c *gin.Context) (helix.Params, error) {
	profile, err := core.ParseProfile(c.Query("profile"))
	if err != nil {
		return helix.Params{}, err
	}
	params, err := core.GetParams(profile)
	if err != nil {
		return helix.Params{}, err
	}

	if v, ok := c.GetQuery("dna_rounds"); ok {
		if params.DNARounds, err = strconv.Atoi(v); err != nil {
			return helix.Params{}, fmt.Errorf("dna_rounds: %w", err)
		}
	}
	if v, ok := c.GetQuery("protein_rounds"); ok {
		if params.ProteinRounds, err = strconv.Atoi(v); err != nil {
			return helix.Params{}, fmt.Errorf("protein_rounds: %w", err)
		}
	}
	if v, ok := c.GetQuery("r"); ok {
		if params.R, err = strconv.ParseFloat(v, 64); err != nil {
			return helix.Params{}, fmt.Errorf("r: %w", err)
		}
	}
	if v, ok := c.GetQuery("x0"); ok {
		if params.X0, err = strconv.ParseFloat(v, 64); err != nil {
			return helix.Params{}, fmt.Errorf("x0: %w", err)
		}
	}
	if err := core.ValidateParams(params); err != nil {
		return helix.Params{}, err
	}
	return params, nil
}

func fail(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
