package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/survey-platform/middleware"
	"github.com/vnkhanh/survey-platform/models"
	"github.com/vnkhanh/survey-platform/utils"
)

const maxImageSize = 5 << 20

type profilePatch struct {
	Color1 *string `json:"color_1" form:"color_1"`
	Color2 *string `json:"color_2" form:"color_2"`
	Color3 *string `json:"color_3" form:"color_3"`
}

// GET /api/profile/me/
func (h *Handler) GetProfile(c *gin.Context) {
	u := middleware.CurrentUser(c)
	c.JSON(http.StatusOK, u.Profile())
}

// PATCH /api/profile/me/
func (h *Handler) UpdateProfile(c *gin.Context) {
	u := middleware.CurrentUser(c)

	var req profilePatch
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	colorPatches := []struct {
		column string
		base   string
		patch  *string
	}{
		{"color_1", u.Color1, req.Color1},
		{"color_2", u.Color2, req.Color2},
		{"color_3", u.Color3, req.Color3},
	}
	for _, cp := range colorPatches {
		if cp.patch == nil {
			continue
		}
		v, err := utils.MergeColor(cp.base, cp.patch)
		if err != nil {
			fail(c, err, "Invalid profile")
			return
		}
		updates[cp.column] = v
	}

	if c.ContentType() == gin.MIMEMultipartPOSTForm {
		for _, field := range []string{"avatar", "background_image"} {
			fh, err := c.FormFile(field)
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid upload", "error": err.Error()})
				return
			}
			url, status, err := h.storeImage(u.ID, field, fh)
			if err != nil {
				if status >= http.StatusInternalServerError {
					slog.Error("cannot store image", "user_id", u.ID, "field", field, "error", err)
					c.JSON(status, gin.H{"message": "Cannot store image"})
					return
				}
				c.JSON(status, gin.H{"message": "Invalid upload", "error": err.Error()})
				return
			}
			updates[field] = url
		}
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, u.Profile())
		return
	}

	db := h.DB.WithContext(c.Request.Context())
	if err := db.Model(&models.User{}).Where("id = ?", u.ID).Updates(updates).Error; err != nil {
		internalError(c, "Cannot update profile", err, "user_id", u.ID)
		return
	}
	var out models.User
	if err := db.First(&out, u.ID).Error; err != nil {
		internalError(c, "Cannot read profile", err, "user_id", u.ID)
		return
	}
	c.JSON(http.StatusOK, out.Profile())
}

// storeImage uploads one profile image and returns its public URL together
// with the status to answer on failure.
func (h *Handler) storeImage(userID uint, field string, fh *multipart.FileHeader) (string, int, error) {
	if h.Uploader == nil {
		return "", http.StatusServiceUnavailable, errors.New("uploads are not configured")
	}
	if fh.Size > maxImageSize {
		return "", http.StatusBadRequest, fmt.Errorf("%s is larger than %d bytes", field, maxImageSize)
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	f, err := fh.Open()
	if err != nil {
		return "", http.StatusBadRequest, err
	}
	defer f.Close()

	id := strconv.FormatUint(uint64(userID), 10) + "-" + strconv.FormatInt(time.Now().UnixNano(), 10)
	url, err := h.Uploader.Upload(utils.ObjectPath(field, id, fh.Filename), f, contentType)
	if err != nil {
		return "", http.StatusBadGateway, err
	}
	return url, http.StatusOK, nil
}
