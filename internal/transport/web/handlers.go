package web

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/sandevgo/lumina/internal/core"
	"github.com/sandevgo/lumina/pkg/log"
)

// multipartOverhead is the allowance for form fields and boundaries on top
// of the image itself.
const multipartOverhead = 1 << 20

var (
	errEmptyChat     = errors.New("message must not be empty unless an image is attached")
	errNotAnImage    = errors.New("uploaded file is not an image")
	errTooLarge      = errors.New("upload exceeds size limit")
	errInvalidLimit  = errors.New("limit must be a positive integer")
	errInvalidFormat = errors.New("invalid request body")
)

type chatRequest struct {
	Message string `json:"message"`
}

type historyItem struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type factRequest struct {
	Value string `json:"value" binding:"required"`
}

func abortError(c *gin.Context, status int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": core.Version})
}

func (s *Server) chat(c *gin.Context) {
	var (
		message string
		image   *core.Image
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		var status int
		var err error
		message, image, status, err = s.parseMultipart(c)
		if err != nil {
			abortError(c, status, err)
			return
		}
	} else {
		var req chatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if isTooLarge(err) {
				abortError(c, http.StatusRequestEntityTooLarge, errTooLarge)
				return
			}
			abortError(c, http.StatusBadRequest, errInvalidFormat)
			return
		}
		message = req.Message
	}

	if strings.TrimSpace(message) == "" && image == nil {
		abortError(c, http.StatusBadRequest, errEmptyChat)
		return
	}

	resp, err := s.handler.Handle(c.Request.Context(), core.ChannelWeb, message, image)
	if err != nil {
		abortError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) parseMultipart(c *gin.Context) (string, *core.Image, int, error) {
	if err := c.Request.ParseMultipartForm(s.cfg.MaxUploadBytes()); err != nil {
		if isTooLarge(err) {
			return "", nil, http.StatusRequestEntityTooLarge, errTooLarge
		}
		return "", nil, http.StatusBadRequest, errInvalidFormat
	}

	message := c.PostForm("message")

	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return message, nil, 0, nil
	}
	if err != nil {
		return "", nil, http.StatusBadRequest, errInvalidFormat
	}
	if fh.Size > s.cfg.MaxUploadBytes() {
		return "", nil, http.StatusRequestEntityTooLarge, errTooLarge
	}

	img, err := readImage(fh)
	if err != nil {
		return "", nil, http.StatusBadRequest, err
	}
	return message, img, 0, nil
}

// readImage loads an uploaded file and accepts it only when its content
// sniffs as an image, whatever the client claimed.
func readImage(fh *multipart.FileHeader) (*core.Image, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, errInvalidFormat
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errInvalidFormat
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, errNotAnImage
	}
	return &core.Image{Data: data, MIME: mt.String()}, nil
}

func (s *Server) history(c *gin.Context) {
	limit := s.cfg.HistoryLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			abortError(c, http.StatusBadRequest, errInvalidLimit)
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	msgs, _ := s.store.RecentMessages(c.Request.Context(), limit)
	items := make([]historyItem, 0, len(msgs))
	for _, m := range msgs {
		items = append(items, historyItem{Role: m.Role, Content: m.Content})
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) listFacts(c *gin.Context) {
	facts, _ := s.store.AllFacts(c.Request.Context())
	if facts == nil {
		facts = []core.Fact{}
	}
	c.JSON(http.StatusOK, facts)
}

func (s *Server) putFact(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		abortError(c, http.StatusBadRequest, errors.New("key must not be empty"))
		return
	}

	var req factRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, errors.New("value is required"))
		return
	}

	value := strings.TrimSpace(req.Value)
	if err := s.store.UpsertFact(c.Request.Context(), key, value); err != nil {
		log.FromCtx(c.Request.Context()).Error().Err(err).Str("key", key).Msg("failed to save fact")
		abortError(c, http.StatusInternalServerError, errors.New("failed to save fact"))
		return
	}
	c.JSON(http.StatusOK, core.Fact{Key: key, Value: value})
}
