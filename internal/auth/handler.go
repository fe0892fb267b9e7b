package auth

import (
    "fmt"
    "net/http"

    "github.com/gofiber/fiber/v2"

    "github.com/pocket-budget/pocket_budget/internal/api"
    "github.com/pocket-budget/pocket_budget/internal/apperr"
)

// Handler exposes the authorize/confirm endpoints.
type Handler struct {
    svc *Service
}

func NewHandler(svc *Service) *Handler {
    return &Handler{svc: svc}
}

type authorizeRequest struct {
    Phone    string `json:"phone"`
    Username string `json:"username"`
}

type confirmRequest struct {
    Phone string `json:"phone"`
    Code  string `json:"code"`
}

type tokenResponse struct {
    Token string `json:"token"`
}

// Authorize sends a verification code to the phone in the body.
func (h *Handler) Authorize(c *fiber.Ctx) error {
    var req authorizeRequest
    if err := api.Body(c, &req); err != nil {
        return err
    }
    if _, err := h.svc.Authorize(c.UserContext(), req.Phone, req.Username); err != nil {
        return err
    }
    return api.OK(c, api.Message{Message: fmt.Sprintf("Code is sent to %s.", req.Phone)})
}

// Confirm exchanges a verification code for a bearer token. Every service
// failure is a client error carrying the service's message.
func (h *Handler) Confirm(c *fiber.Ctx) error {
    var req confirmRequest
    if err := api.Body(c, &req); err != nil {
        return err
    }
    token, err := h.svc.Confirm(c.UserContext(), req.Code, req.Phone)
    if err != nil {
        if msg, ok := apperr.Message(err); ok {
            return fiber.NewError(http.StatusBadRequest, msg)
        }
        return err
    }
    return api.OK(c, tokenResponse{Token: token})
}
