package rest

import (
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with every route and its gate.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.Logger))

	alumniOnly := RequireKind(h.Tokens, models.KindAlumni)
	adminOnly := RequireKind(h.Tokens, models.KindAdmin)
	image := StageUploads(h.uploadDir, h.maxUploadSize, "image")

	r.GET("/healthz", h.healthz)
	r.GET("/directory", h.listAlumni)
	r.GET("/directory/:id", h.directoryEntry)
	r.GET("/gallery", h.listGallery)

	r.POST("/alumni/login", h.alumniLogin)
	r.POST("/alumni/register", image, h.alumniRegister)
	r.POST("/alumni/refresh", h.alumniRefresh)
	r.GET("/alumni/user", alumniOnly, h.alumniUser)
	r.PUT("/alumni/profile/edit", alumniOnly, h.alumniProfileEdit)
	r.PUT("/alumni/password", alumniOnly, h.changePassword)
	r.GET("/profile", alumniOnly, h.alumniProfile)

	r.POST("/admin/login", h.adminLogin)
	if h.adminSelfRegistration {
		r.POST("/admin/register", h.adminRegister)
	} else {
		r.POST("/admin/register", adminOnly, h.adminRegister)
	}

	admin := r.Group("/admin", adminOnly)
	admin.PUT("/password", h.changePassword)
	admin.POST("/add-user", image, h.adminAddUser)
	admin.GET("/user/:id", h.adminGetUser)
	admin.DELETE("/user/:id", h.adminDeleteUser)
	admin.GET("/users", h.listAlumni)
	admin.GET("/gallery", h.listGallery)
	admin.POST("/gallery", image, h.uploadGallery)
	admin.DELETE("/gallery/:id", h.deleteGallery)
	admin.GET("/images", h.listGallery)

	return r
}
