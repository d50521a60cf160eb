package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/gin-gonic/gin"
)

func (h *Handler) alumniLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	pair, _, err := h.Credentials.Login(c.Request.Context(), models.KindAlumni, req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "user is not registered"})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": pair.AccessToken, "refreshToken": pair.RefreshToken})
}

func (h *Handler) alumniRegister(c *gin.Context) {
	var form alumniForm
	if err := c.ShouldBind(&form); err != nil {
		badRequest(c, "invalid form")
		return
	}
	profile, err := form.toModel()
	if err != nil {
		h.writeError(c, err)
		return
	}

	uploads, closeAll, err := openStaged(stagedFiles(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer closeAll()

	var image *storage.Upload
	if len(uploads) > 0 {
		image = &uploads[0]
	}

	pair, _, err := h.Alumni.Register(c.Request.Context(), form.Password, profile, image)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": pair.AccessToken, "refreshToken": pair.RefreshToken})
}

func (h *Handler) alumniRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "refreshToken is required")
		return
	}

	token, err := h.Credentials.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *Handler) currentAlumni(c *gin.Context) (*models.Alumni, bool) {
	a, err := h.Alumni.Get(c.Request.Context(), identity(c).ID)
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return a, true
}

func (h *Handler) alumniUser(c *gin.Context) {
	if a, ok := h.currentAlumni(c); ok {
		c.JSON(http.StatusOK, gin.H{"response": a})
	}
}

func (h *Handler) alumniProfile(c *gin.Context) {
	if a, ok := h.currentAlumni(c); ok {
		c.JSON(http.StatusOK, gin.H{"user": a})
	}
}

func (h *Handler) alumniProfileEdit(c *gin.Context) {
	var req profileEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid profile data")
		return
	}
	patch, err := req.FormData.toPatch()
	if err != nil {
		h.writeError(c, err)
		return
	}

	a, err := h.Alumni.UpdateProfile(c.Request.Context(), identity(c).ID, patch)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": a})
}

// changePassword serves both kinds; the gate in front of it decides which.
func (h *Handler) changePassword(c *gin.Context) {
	var req passwordChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "oldPassword and newPassword are required")
		return
	}

	id := identity(c)
	if err := h.Credentials.ChangePassword(c.Request.Context(), id.Kind, id.ID, req.OldPassword, req.NewPassword); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "password updated"})
}
