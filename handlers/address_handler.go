package handlers

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/David-999-david/man-app-server/dto"
	"github.com/David-999-david/man-app-server/middleware"
	"github.com/David-999-david/man-app-server/services"
	"github.com/David-999-david/man-app-server/utils"

	"github.com/gofiber/fiber/v2"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type AddressHandler struct {
	addresses *services.AddressService
}

func NewAddressHandler(addresses *services.AddressService) *AddressHandler {
	return &AddressHandler{addresses: addresses}
}

// POST /api/addresses
//
// Multipart form: field "data" holds the address JSON, optional field "image"
// holds an attached photo of the location.
func (h *AddressHandler) Create(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	jsonData := c.FormValue("data")
	if jsonData == "" {
		return utils.JSONError(c, fiber.StatusBadRequest, "form field 'data' (JSON string) is required", nil)
	}

	var req dto.AddressRequest
	if err := json.Unmarshal([]byte(jsonData), &req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid 'data' field (must be a valid JSON string)", nil)
	}

	var upload *services.ImageUpload
	var file multipart.File

	fileHeader, err := c.FormFile("image")
	if err != nil && err != http.ErrMissingFile {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid file upload", nil)
	}
	if fileHeader != nil {
		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		if !allowedImageExts[ext] {
			return utils.JSONError(c, fiber.StatusBadRequest, "only JPG and PNG images are allowed", nil)
		}

		file, err = fileHeader.Open()
		if err != nil {
			return utils.JSONError(c, fiber.StatusBadRequest, "invalid file upload", nil)
		}
		defer file.Close()

		upload = &services.ImageUpload{
			Body:        file,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Ext:         ext,
			Description: req.ImageDesc,
		}
	}

	view, err := h.addresses.Create(c.Context(), userID, addressInput(req), upload)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusCreated, "address created", dto.ToAddressResponse(view))
}

// GET /api/addresses
func (h *AddressHandler) List(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	views, err := h.addresses.List(userID)
	if err != nil {
		return jsonFromError(c, err)
	}

	responses := make([]dto.AddressResponse, 0, len(views))
	for _, view := range views {
		responses = append(responses, dto.ToAddressResponse(view))
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "addresses", responses)
}

// GET /api/addresses/:id
func (h *AddressHandler) GetByID(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid address id", nil)
	}

	view, err := h.addresses.GetByID(userID, id)
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "address", dto.ToAddressResponse(view))
}

// PUT /api/addresses/:id
func (h *AddressHandler) Update(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid address id", nil)
	}

	var req dto.AddressRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid JSON body", nil)
	}

	view, err := h.addresses.Update(userID, id, addressInput(req))
	if err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "address updated", dto.ToAddressResponse(view))
}

// DELETE /api/addresses/:id
func (h *AddressHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return utils.JSONError(c, fiber.StatusUnauthorized, "unauthenticated", nil)
	}

	id, err := parseIDParam(c, "id")
	if err != nil {
		return utils.JSONError(c, fiber.StatusBadRequest, "invalid address id", nil)
	}

	if err := h.addresses.Delete(c.Context(), userID, id); err != nil {
		return jsonFromError(c, err)
	}

	return utils.JSONSuccess(c, fiber.StatusOK, "address deleted", nil)
}

func addressInput(req dto.AddressRequest) services.AddressInput {
	return services.AddressInput{
		Label:      req.Label,
		Street:     req.Street,
		City:       req.City,
		State:      req.State,
		Country:    req.Country,
		PostalCode: req.PostalCode,
	}
}
