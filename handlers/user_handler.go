package handlers

import (
	"path/filepath"
	"strings"

	"github.com/David-999-david/man-app-server/middleware"
	"github.com/David-999-david/man-app-server/services"
	"github.com/David-999-david/man-app-server/utils"

	"github.com/gofiber/fiber/v2"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// POST /api/users/avatar
func (h *UserHandler) UploadAvatar(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "form field 'image' (file upload) is required", nil)
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExts[ext] {
		return utils.JSONError(c, fiber.StatusBadRequest, "only JPG and PNG images are allowed", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid file upload", nil)
	}
	defer file.Close()

	url, err := h.users.UploadAvatar(c.Context(), userID, services.ImageUpload{
		Body:        file,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Ext:         ext,
	})
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "avatar uploaded", fiber.Map{"url": url})
}
