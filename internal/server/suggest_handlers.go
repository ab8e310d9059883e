package server

import (
	"crypto/sha256"
	"encoding/hex"

	"inkwell/internal/cache"
	"inkwell/internal/models"
	"inkwell/internal/suggest"

	"github.com/gofiber/fiber/v2"
)

// GenerateSuggestions handles POST /api/suggestions
// @Summary Suggest titles and hashtags
// @Description Generate up to 5 title and 5 hashtag suggestions for a draft; degrades to a static set when the upstream is unavailable
// @Tags suggestions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{content=string} true "Draft content"
// @Success 200 {object} suggest.Suggestions
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /suggestions [post]
func (s *Server) GenerateSuggestions(c *fiber.Ctx) error {
	userID := currentUserID(c)

	if !s.featureFlags.SuggestionsEnabled(userID) {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewForbiddenError("Suggestions are not enabled for this account"))
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	if req.Content == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Content is required"))
	}

	// Identical drafts share a cached suggestion round.
	digest := sha256.Sum256([]byte(req.Content))
	key := cache.SuggestionsKey(hex.EncodeToString(digest[:]))

	var result suggest.Suggestions
	err := cache.Aside(c.UserContext(), key, &result, cache.SuggestionsTTL, func() error {
		result = s.suggestClient.Generate(c.UserContext(), req.Content)
		return nil
	})
	if err != nil {
		result = s.suggestClient.Generate(c.UserContext(), req.Content)
	}

	return c.JSON(result)
}
