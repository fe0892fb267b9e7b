package customer

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pocket-budget/pocket_budget/internal/api"
)

// Handler exposes the authenticated customer's profile.
type Handler struct {
	service *Service
}

// NewHandler constructs a profile HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type profileResponse struct {
	ID        string     `json:"id"`
	Phone     string     `json:"phone"`
	Username  string     `json:"username"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func toProfile(c Customer) profileResponse {
	out := profileResponse{ID: c.ID, Phone: c.Phone, Username: c.Username, CreatedAt: c.CreatedAt}
	if !c.UpdatedAt.IsZero() {
		updated := c.UpdatedAt
		out.UpdatedAt = &updated
	}
	return out
}

type updateProfileRequest struct {
	Username *string `json:"username"`
}

// Profile returns the current customer.
func (h *Handler) Profile(c *fiber.Ctx) error {
	cust, ok := Current(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
	}
	fresh, err := h.service.Get(c.UserContext(), cust.Phone)
	if err != nil {
		return err
	}
	return api.OK(c, api.Detail[profileResponse]{Item: toProfile(fresh)})
}

// UpdateProfile renames the current customer. An absent username leaves the
// profile unchanged.
func (h *Handler) UpdateProfile(c *fiber.Ctx) error {
	cust, ok := Current(c)
	if !ok {
		return fiber.NewError(http.StatusUnauthorized, "Unauthorized")
	}
	var req updateProfileRequest
	if err := api.Body(c, &req); err != nil {
		return err
	}
	updated := cust
	if req.Username != nil {
		var err error
		if updated, err = h.service.UpdateUsername(c.UserContext(), cust, *req.Username); err != nil {
			return err
		}
	}
	return api.OK(c, api.Detail[profileResponse]{Item: toProfile(updated)})
}
