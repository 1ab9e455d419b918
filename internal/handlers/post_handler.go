package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/session"
	"github.com/gofiber/fiber/v2"
)

type PostHandler struct {
	postService *services.PostService
}

func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// List serves GET /posts?type=OPEN_ROLE. The caller may be anonymous.
func (h *PostHandler) List(c *fiber.Ctx) error {
	category := models.PostType(strings.ToUpper(c.Query("type", string(models.PostOpenRole))))

	posts, err := h.postService.List(c.UserContext(), session.GetRequester(c), category)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PostListResponse{Posts: posts, Total: len(posts)})
}

func (h *PostHandler) Create(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.CreatePostRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	req.Type = models.PostType(strings.ToUpper(string(req.Type)))

	post, err := h.postService.Create(c.UserContext(), user, &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(post)
}

// Get serves GET /posts/:id. The caller may be anonymous.
func (h *PostHandler) Get(c *fiber.Ctx) error {
	post, err := h.postService.Get(c.UserContext(), session.GetRequester(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Like(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	likes, err := h.postService.Like(c.UserContext(), user, c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.LikeResponse{Likes: likes})
}

func (h *PostHandler) Comment(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.CommentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	comment, err := h.postService.Comment(c.UserContext(), user, c.Params("id"), req.Text)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *PostHandler) Apply(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	post, changed, err := h.postService.Apply(c.UserContext(), c.Params("id"), user)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MembershipResponse{Post: post, Changed: changed})
}

func (h *PostHandler) UpdateDelivery(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	var req dto.DeliveryLinksRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	post, err := h.postService.UpdateDeliveryLinks(c.UserContext(), user, c.Params("id"), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Delete(c *fiber.Ctx) error {
	user := session.GetRequester(c)
	if user == nil {
		return unauthorized(c)
	}

	if err := h.postService.Delete(c.UserContext(), user, c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted"})
}

func (h *PostHandler) UserPosts(c *fiber.Ctx) error {
	posts, err := h.postService.UserPosts(c.UserContext(), session.GetRequester(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PostListResponse{Posts: posts, Total: len(posts)})
}

// ---- reviewer endpoints ----

func (h *PostHandler) Pending(c *fiber.Ctx) error {
	posts, err := h.postService.Pending(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.PostListResponse{Posts: posts, Total: len(posts)})
}

func (h *PostHandler) Verify(c *fiber.Ctx) error {
	post, err := h.postService.Verify(c.UserContext(), requesterID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Reject(c *fiber.Ctx) error {
	post, err := h.postService.Reject(c.UserContext(), requesterID(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

func (h *PostHandler) Assign(c *fiber.Ctx) error {
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil || req.UserID == "" {
		return badRequest(c, "user_id is required")
	}

	post, changed, err := h.postService.Assign(c.UserContext(), requesterID(c), c.Params("id"), req.UserID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MembershipResponse{Post: post, Changed: changed})
}

func (h *PostHandler) AssignTeam(c *fiber.Ctx) error {
	var req dto.AssignTeamRequest
	if err := c.BodyParser(&req); err != nil || len(req.UserIDs) == 0 {
		return badRequest(c, "user_ids is required")
	}

	post, changed, err := h.postService.AssignTeam(c.UserContext(), requesterID(c), c.Params("id"), req.UserIDs)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MembershipResponse{Post: post, Changed: changed})
}

func (h *PostHandler) Unassign(c *fiber.Ctx) error {
	post, changed, err := h.postService.Unassign(c.UserContext(), requesterID(c), c.Params("id"), c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.MembershipResponse{Post: post, Changed: changed})
}

func requesterID(c *fiber.Ctx) string {
	if user := session.GetRequester(c); user != nil {
		return user.ID
	}
	return ""
}
