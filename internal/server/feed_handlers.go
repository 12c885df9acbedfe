package server

import (
	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed. Authentication is optional: an anonymous
// viewer gets the same posts with Liked always false.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	posts, err := s.feedService.GetFeed(c.Context(), viewerID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	post, err := s.feedService.GetPost(c.Context(), viewerID, id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}
