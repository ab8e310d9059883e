package server

import (
	"inkwell/internal/feed"
	"inkwell/internal/models"
	"inkwell/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
// @Summary Get own profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Router /users/me [get]
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	user, err := s.userRepo.GetByID(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// UpdateMyProfile handles PUT /api/users/me
// @Summary Update own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body object{username=string,bio=string,avatar=string} true "Profile fields"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me [put]
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := currentUserID(c)

	var req struct {
		Username string `json:"username"`
		Bio      string `json:"bio"`
		Avatar   string `json:"avatar"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.Username != "" && req.Username != user.Username {
		if err := validation.ValidateUsername(req.Username); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError(err.Error()))
		}
		user.Username = req.Username
	}
	user.Bio = req.Bio
	user.Avatar = req.Avatar

	if err := s.userRepo.Update(c.UserContext(), user); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(user)
}

// GetSavedPosts handles GET /api/users/me/saved
// @Summary List saved posts
// @Description List the posts the caller has bookmarked, newest save first
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Post
// @Router /users/me/saved [get]
func (s *Server) GetSavedPosts(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	posts, err := s.postService.GetSavedPosts(c.UserContext(), currentUserID(c), page.Limit, page.Offset)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(posts)
}

// GetMyFeatureFlags handles GET /api/users/me/flags
// @Summary Get evaluated feature flags
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]bool
// @Router /users/me/flags [get]
func (s *Server) GetMyFeatureFlags(c *fiber.Ctx) error {
	return c.JSON(s.featureFlags.Snapshot(currentUserID(c)))
}

// SuggestUsernames handles GET /api/users/suggestions?prefix=...
// @Summary Suggest usernames
// @Description Up to 5 unique usernames matching the prefix, case-insensitive
// @Tags users
// @Produce json
// @Param prefix query string true "Username prefix"
// @Success 200 {array} string
// @Router /users/suggestions [get]
func (s *Server) SuggestUsernames(c *fiber.Ctx) error {
	prefix := c.Query("prefix")
	if prefix == "" {
		return c.JSON([]string{})
	}

	usernames, err := s.userRepo.Usernames(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}

	suggestions := feed.Suggest(usernames, prefix)
	if suggestions == nil {
		suggestions = []string{}
	}
	return c.JSON(suggestions)
}
