package certificates

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carbon-connect/marketplace-backend/internal/identity"
	"carbon-connect/marketplace-backend/pkg/storage"
)

// Handler serves generated and signed certificates by filename.
type Handler struct {
	store *storage.FileStore
}

func NewHandler(store *storage.FileStore) *Handler {
	return &Handler{store: store}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	certs := rg.Group("/certificates")
	{
		certs.GET("/signed/:filename", h.DownloadSigned)
		certs.GET("/:filename", h.Download)
	}
}

func (h *Handler) Download(c *gin.Context) {
	h.serve(c, storage.NamespaceCertificates, "application/pdf")
}

func (h *Handler) DownloadSigned(c *gin.Context) {
	h.serve(c, storage.NamespaceSignedCertificates, "application/pkcs7-mime")
}

func (h *Handler) serve(c *gin.Context, ns storage.Namespace, contentType string) {
	if _, ok := identity.CallerFrom(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	name := c.Param("filename")
	if !h.store.Exists(ns, name) {
		c.JSON(http.StatusNotFound, gin.H{"error": "certificate not found"})
		return
	}

	c.Header("Content-Type", contentType)
	c.File(h.store.Path(ns, name))
}
