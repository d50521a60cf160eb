package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/alumnihub/internal/common"
	"github.com/dmitrijs2005/alumnihub/internal/server/models"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/gin-gonic/gin"
)

func (h *Handler) adminLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	pair, _, err := h.Credentials.Login(c.Request.Context(), models.KindAdmin, req.UserName, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "user is not registered"})
			return
		}
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": pair.AccessToken})
}

func (h *Handler) adminRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	p, err := h.Credentials.Create(c.Request.Context(), models.KindAdmin, req.UserName, req.Password)
	if err != nil {
		h.writeError(c, err)
		return
	}

	pair, err := h.Credentials.IssueTokens(p)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": pair.AccessToken})
}

func (h *Handler) adminAddUser(c *gin.Context) {
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

	a, err := h.Alumni.Provision(c.Request.Context(), profile, image)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": "user added successfully", "response": a})
}

func (h *Handler) adminGetUser(c *gin.Context) {
	a, err := h.Alumni.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": a})
}

func (h *Handler) adminDeleteUser(c *gin.Context) {
	if err := h.Alumni.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h *Handler) listAlumni(c *gin.Context) {
	list, err := h.Alumni.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"response": list})
}

func (h *Handler) directoryEntry(c *gin.Context) {
	h.adminGetUser(c)
}
