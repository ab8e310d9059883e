package server

import (
	"io"

	"inkwell/internal/models"
	"inkwell/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// UploadCoverImage handles POST /api/media/covers
// @Summary Upload a cover image
// @Description Validate and store a cover image, returning its public URL
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file (png, jpeg, gif, webp)"
// @Success 201 {object} object{url=string}
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /media/covers [post]
func (s *Server) UploadCoverImage(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if !s.featureFlags.MediaUploadsEnabled(userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Cover uploads are not enabled for this account"))
	}
	if s.mediaStore == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
			Error: "Media storage is not configured",
		})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("No file uploaded"))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Could not read uploaded file"))
	}

	url, err := s.mediaStore.UploadCoverImage(c.UserContext(), storage.UploadInput{
		UserID:   userID,
		Filename: fileHeader.Filename,
		Content:  content,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": url})
}
