package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/textcipher-go/internal/encryption"
	"github.com/textcipher-go/internal/engine"
	"github.com/textcipher-go/internal/errors"
)

// FallbackHeader is set on stream responses when an unknown method tag
// was replaced by rotation
const FallbackHeader = "X-Cipher-Fallback"

// TextRequest is the body of the inline encrypt and decrypt endpoints
type TextRequest struct {
	Method   string `json:"method"`
	Key      string `json:"key"`
	Text     string `json:"text"`
	Encoding string `json:"encoding"` // text, hex, base64
}

// TextResponse carries the transformed text
type TextResponse struct {
	Text    string `json:"text"`
	Bytes   int64  `json:"bytes"`
	Method  string `json:"method"`
	Warning string `json:"warning,omitempty"`
}

// CipherHandler serves /api/v1 encrypt, decrypt and stream routes
type CipherHandler struct {
	engine  *engine.Engine
	maxBody int64
}

// NewCipherHandler creates a new cipher handler
func NewCipherHandler(e *engine.Engine, maxBody int64) *CipherHandler {
	return &CipherHandler{engine: e, maxBody: maxBody}
}

// Encrypt handles POST /api/v1/encrypt
func (h *CipherHandler) Encrypt(c *gin.Context) {
	h.text(c, encryption.Encrypt)
}

// Decrypt handles POST /api/v1/decrypt
func (h *CipherHandler) Decrypt(c *gin.Context) {
	h.text(c, encryption.Decrypt)
}

func (h *CipherHandler) text(c *gin.Context, dir encryption.Direction) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	var req TextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, errors.NewBadRequestWithCause("Invalid request body", err))
		return
	}
	if !engine.ValidFormat(req.Encoding) {
		RespondError(c, errors.NewBadRequest("unknown encoding: "+req.Encoding))
		return
	}

	ctx := c.Request.Context()
	var (
		res engine.Result
		err error
	)
	if dir == encryption.Encrypt {
		res, err = h.engine.EncryptText(ctx, []byte(req.Text), req.Method, req.Key)
	} else {
		var input []byte
		if input, err = engine.DecodeInput(req.Encoding, req.Text); err != nil {
			RespondError(c, err)
			return
		}
		res, err = h.engine.DecryptText(ctx, input, req.Method, req.Key)
	}
	if err != nil {
		RespondError(c, err)
		return
	}

	// Decrypted output goes back as plain text; encrypted output honours the encoding.
	format := engine.FormatText
	if dir == encryption.Encrypt {
		format = req.Encoding
	}
	out, err := engine.EncodeOutput(format, res.Output)
	if err != nil {
		RespondError(c, err)
		return
	}

	resp := TextResponse{
		Text:   out,
		Bytes:  res.Bytes,
		Method: res.Method.String(),
	}
	if res.Fallback {
		resp.Warning = fallbackWarning(req.Method)
	}
	RespondSuccess(c, resp)
}

// Stream handles POST /api/v1/stream/:direction. The request body is
// transformed chunk by chunk straight into the response body.
func (h *CipherHandler) Stream(c *gin.Context) {
	var dir encryption.Direction
	switch c.Param("direction") {
	case "encrypt":
		dir = encryption.Encrypt
	case "decrypt":
		dir = encryption.Decrypt
	default:
		RespondError(c, errors.NewNotFound("unknown stream direction: "+c.Param("direction")))
		return
	}

	method := c.Query("method")
	if _, ok := encryption.ParseMethod(method); !ok {
		c.Header(FallbackHeader, encryption.MethodRotation.String())
	}

	body := http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	c.Header("Content-Type", "application/octet-stream")

	_, err := h.engine.Stream(c.Request.Context(), dir, body, c.Writer, method, c.Query("key"))
	if err != nil {
		if c.Writer.Written() {
			// Status is already on the wire; the client sees a truncated body.
			c.Abort()
			return
		}
		c.Writer.Header().Del("Content-Type")
		c.Writer.Header().Del(FallbackHeader)
		RespondError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func fallbackWarning(tag string) string {
	return "unknown method " + strconv.Quote(tag) + ", used rotation"
}
