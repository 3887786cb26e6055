package server

import (
	"github.com/gofiber/fiber/v2"
)

// LikePost handles POST /api/likes/like/:postId
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.LikePost(c.Context(), callerID(c), postID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post liked",
	})
}

// UnlikePost handles DELETE /api/likes/unlike/:postId
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	if err := s.postService.UnlikePost(c.Context(), callerID(c), postID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Post unliked",
	})
}

// HasLiked handles GET /api/likes/hasLiked/:postId
func (s *Server) HasLiked(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}

	liked, err := s.postService.HasLiked(c.Context(), callerID(c), postID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"hasLiked": liked,
	})
}
