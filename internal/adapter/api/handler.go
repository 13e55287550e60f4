package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"maison-core/internal/domain/entity"

	"github.com/gofiber/fiber/v2"
)

// ChatService is the slice of the orchestrator the handlers need.
type ChatService interface {
	Chat(ctx context.Context, req entity.ChatRequest) *entity.ChatResult
	History(ctx context.Context, sessionID string) ([]entity.Turn, error)
}

type ChatHandler struct {
	chat ChatService
}

func NewChatHandler(chat ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type turnResponse struct {
	Role      entity.Role `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

type historyResponse struct {
	SessionID string         `json:"session_id"`
	Turns     []turnResponse `json:"turns"`
}

// HandleChat answers one turn. The session id is passed through untouched,
// whatever its format; only a blank id is rejected, since an empty key would
// merge unrelated visitors into one shared history.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req entity.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if strings.TrimSpace(req.Query) == "" || strings.TrimSpace(req.SessionID) == "" {
		return fiber.NewError(fiber.StatusBadRequest, entity.ErrInvalidRequest.Error()+": query and session_id are required")
	}

	res := h.chat.Chat(c.UserContext(), req)
	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *ChatHandler) HandleHistory(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	turns, err := h.chat.History(c.UserContext(), sessionID)
	if err != nil {
		return err
	}

	resp := historyResponse{SessionID: sessionID, Turns: make([]turnResponse, 0, len(turns))}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, turnResponse{Role: t.Role, Content: t.Content, Timestamp: t.Timestamp})
	}
	return c.Status(fiber.StatusOK).JSON(resp)
}

// ErrorHandler renders every failure as {"detail": ...}. Unexpected errors
// become a 500 carrying the error text.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
}
