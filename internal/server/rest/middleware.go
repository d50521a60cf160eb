package rest

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/filex"
	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/auth"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const stagedFilesKey = "stagedFiles"

// extractToken accepts both "Bearer <jwt>" and a bare token.
func extractToken(header string) string {
	return strings.TrimSpace(strings.TrimPrefix(header, common.BearerPrefix))
}

// RequireKind rejects requests without a valid access token for kind. The
// handler only runs once the identity is attached to the request context.
func RequireKind(tokens TokenVerifier, kind models.Kind) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(common.AuthorizationHeaderName)
		if header == "" {
			abortWith(c, common.ErrorUnauthorized)
			return
		}

		id, err := tokens.VerifyAccessToken(extractToken(header))
		if err != nil {
			abortWith(c, err)
			return
		}

		if id.Kind != kind {
			abortWith(c, common.ErrForbidden)
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// abortWith stops the chain with the status statusFor assigns to err. The
// gate only ever answers 401 or 403.
func abortWith(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status != http.StatusUnauthorized && status != http.StatusForbidden {
		status, msg = statusFor(common.ErrInvalidToken)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// RequestLogger logs one line per request. Bodies and headers are not logged.
func RequestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}

// stagedFile is an upload saved into the staging directory.
type stagedFile struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// StageUploads parses the multipart body, saves every file sent under field
// into dir and removes them again once the handler returns. Requests without
// a multipart body pass through with no files staged.
func StageUploads(dir string, maxSize int64, field string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.ContentType(), "multipart/") {
			c.Next()
			return
		}

		if maxSize > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}

		form, err := c.MultipartForm()
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "upload too large"})
				return
			}
			badRequest(c, "invalid multipart form")
			return
		}

		var staged []stagedFile
		defer func() {
			paths := make([]string, 0, len(staged))
			for _, f := range staged {
				paths = append(paths, f.Path)
			}
			_ = filex.RemoveFiles(paths...)
		}()

		for _, fh := range form.File[field] {
			dst := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
			if err := c.SaveUploadedFile(fh, dst); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
				return
			}
			staged = append(staged, stagedFile{
				Path:        dst,
				Name:        fh.Filename,
				ContentType: fh.Header.Get("Content-Type"),
				Size:        fh.Size,
			})
		}

		c.Set(stagedFilesKey, staged)
		c.Next()
	}
}

func stagedFiles(c *gin.Context) []stagedFile {
	v, _ := c.Get(stagedFilesKey)
	files, _ := v.([]stagedFile)
	return files
}

// openStaged opens the staged files as uploads. The returned func closes them.
func openStaged(files []stagedFile) ([]storage.Upload, func(), error) {
	var opened []*os.File
	closeAll := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}

	uploads := make([]storage.Upload, 0, len(files))
	for _, sf := range files {
		f, err := os.Open(sf.Path)
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		opened = append(opened, f)
		uploads = append(uploads, storage.Upload{Name: sf.Name, ContentType: sf.ContentType, Size: sf.Size, Body: f})
	}
	return uploads, closeAll, nil
}
