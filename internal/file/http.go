package file

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/abduss/fileshare/internal/logger"
	"github.com/abduss/fileshare/internal/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartSlack leaves room for boundaries and part headers around a maximum-size file.
const multipartSlack = 1 << 20

// HandlerOptions tunes link generation.
type HandlerOptions struct {
	// PublicURL is the absolute base used in generated links. Empty means derive it
	// from the incoming request's Host, which the client controls. Set it whenever the
	// service is reachable under a fixed name.
	PublicURL string
	// TrustForwardedProto honours X-Forwarded-Proto when deriving links. Only enable it
	// behind a proxy that overwrites the header.
	TrustForwardedProto bool
}

// RegisterRoutes mounts the upload, download, landing and admin endpoints and installs
// the HTML templates used by the landing page.
func RegisterRoutes(router *gin.Engine, service *Service, opts HandlerOptions) {
	router.SetHTMLTemplate(templates)

	handler := &httpHandler{
		service:             service,
		publicURL:           strings.TrimRight(opts.PublicURL, "/"),
		trustForwardedProto: opts.TrustForwardedProto,
	}

	router.GET("/d/:id", handler.landing)

	api := router.Group("/api")
	api.POST("/upload", handler.upload)
	api.GET("/download/:id", handler.download)
	api.GET("/files", handler.listFiles)
	api.DELETE("/files/:id", handler.deleteFile)
}

type httpHandler struct {
	service             *Service
	publicURL           string
	trustForwardedProto bool
}

type uploadResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	File              Record `json:"file"`
	DownloadURL       string `json:"downloadUrl"`
	DirectDownloadURL string `json:"directDownloadUrl"`
}

func (h *httpHandler) upload(c *gin.Context) {
	log := logger.FromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.service.MaxFileSize()+multipartSlack)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		if isBodyTooLarge(err) {
			log.Warn("upload rejected: body too large", zap.Error(err))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
			return
		}
		log.Info("upload rejected: no file", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	rec, err := h.service.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			log.Warn("upload rejected: file too large", zap.Int64("size", fileHeader.Size))
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "File too large"})
		case errors.Is(err, ErrMissingFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		default:
			log.Error("upload failed", zap.String("filename", fileHeader.Filename), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed", "details": err.Error()})
		}
		return
	}

	metrics.RecordUpload(rec.Size)
	log.Info("file uploaded",
		zap.String("id", rec.ID),
		zap.String("stored_name", rec.StoredName),
		zap.Int64("size", rec.Size),
	)

	base := h.baseURL(c)
	c.JSON(http.StatusOK, uploadResponse{
		Success:           true,
		Message:           "File uploaded successfully",
		File:              rec,
		DownloadURL:       landingURL(base, rec.ID),
		DirectDownloadURL: directURL(base, rec.ID),
	})
}

func (h *httpHandler) landing(c *gin.Context) {
	log := logger.FromContext(c)
	id := c.Param("id")

	rec, err := h.service.Visit(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			log.Info("landing: record not found", zap.String("id", id))
			c.HTML(http.StatusNotFound, "message.html", gin.H{
				"Title":   "File not found",
				"Message": "The file you are looking for does not exist or has been removed.",
			})
		case errors.Is(err, ErrFileExpired):
			log.Info("landing: record expired", zap.String("id", id), zap.Time("expires_at", rec.ExpiresAt))
			c.HTML(http.StatusGone, "message.html", gin.H{
				"Title":   "File expired",
				"Message": "This link has expired and the file is no longer available.",
			})
		default:
			log.Error("landing failed", zap.String("id", id), zap.Error(err))
			c.HTML(http.StatusInternalServerError, "message.html", gin.H{
				"Title":   "Something went wrong",
				"Message": "The file could not be loaded. Please try again later.",
			})
		}
		return
	}

	metrics.RecordDownload(metrics.DownloadLanding)
	c.HTML(http.StatusOK, "landing.html", gin.H{
		"Filename":      rec.Filename,
		"Size":          FormatSize(rec.Size),
		"UploadDate":    rec.UploadDate,
		"ExpiresAt":     rec.ExpiresAt,
		"DownloadCount": rec.DownloadCount,
		"DirectURL":     directURL(h.baseURL(c), rec.ID),
		"Countdown":     landingCountdownSeconds,
	})
}

func (h *httpHandler) download(c *gin.Context) {
	log := logger.FromContext(c)
	id := c.Param("id")

	rec, reader, err := h.service.Open(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, ErrFileNotFound):
			log.Info("download: record not found", zap.String("id", id))
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		case errors.Is(err, ErrBlobNotFound):
			log.Warn("download: blob missing for record", zap.String("id", id), zap.String("stored_name", rec.StoredName))
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		case errors.Is(err, ErrFileExpired):
			log.Info("download: record expired", zap.String("id", id))
			c.JSON(http.StatusGone, gin.H{"error": "File has expired"})
		default:
			log.Error("download failed", zap.String("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Download failed"})
		}
		return
	}
	defer reader.Close()

	metrics.RecordDownload(metrics.DownloadDirect)
	c.DataFromReader(http.StatusOK, rec.Size, rec.MimeType, reader, map[string]string{
		"Content-Disposition": contentDisposition(rec.Filename),
	})
}

func (h *httpHandler) listFiles(c *gin.Context) {
	records, err := h.service.List(c.Request.Context())
	if err != nil {
		logger.FromContext(c).Error("list files failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list files"})
		return
	}

	base := h.baseURL(c)
	files := make([]Summary, 0, len(records))
	for _, rec := range records {
		files = append(files, rec.Summarize(landingURL(base, rec.ID)))
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   len(files),
		"files":   files,
	})
}

func (h *httpHandler) deleteFile(c *gin.Context) {
	log := logger.FromContext(c)
	id := c.Param("id")

	rec, err := h.service.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		log.Error("delete failed", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	metrics.RecordDeletion()
	log.Info("file deleted", zap.String("id", rec.ID), zap.String("stored_name", rec.StoredName))
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "File deleted successfully"})
}

func (h *httpHandler) baseURL(c *gin.Context) string {
	if h.publicURL != "" {
		return h.publicURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if h.trustForwardedProto {
		proto := strings.Split(c.GetHeader("X-Forwarded-Proto"), ",")[0]
		switch proto = strings.ToLower(strings.TrimSpace(proto)); proto {
		case "http", "https":
			scheme = proto
		}
	}
	host := c.Request.Host
	if host == "" {
		host = "localhost"
	}
	return scheme + "://" + host
}

func landingURL(base, id string) string {
	return base + "/d/" + url.PathEscape(id)
}

func directURL(base, id string) string {
	return base + "/api/download/" + url.PathEscape(id)
}

// contentDisposition marks the response as an attachment named after the original
// file, percent-encoded so any name survives the header.
func contentDisposition(filename string) string {
	encoded := strings.ReplaceAll(url.QueryEscape(filename), "+", "%20")
	return `attachment; filename="` + encoded + `"; filename*=UTF-8''` + encoded
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
