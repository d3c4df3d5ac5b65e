package handler

import (
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const msgPasswordPrompt = "Привет! Если ты не знаешь пароль, поздравляю - ты пукал, а коль знаешь - вводи:"

// handleStart handles /start command
func (h *Handler) handleStart(c tele.Context) error {
	userID := c.Sender().ID

	h.logger.Info("User started bot",
		zap.Int64("user_id", userID),
		zap.String("username", c.Sender().Username),
	)

	ctx, cancel := requestContext()
	defer cancel()

	// Ensure user exists in database
	if err := h.authService.EnsureUserExists(ctx, userID, c.Sender().Username); err != nil {
		h.logger.Error("Failed to ensure user exists", zap.Error(err))
		return c.Send(msgInternalError)
	}

	// Check if authorized
	authorized, err := h.authService.IsAuthorized(ctx, userID)
	if err != nil {
		h.logger.Error("Failed to check authorization", zap.Error(err))
		return c.Send(msgInternalError)
	}

	h.ResetState(userID)
	if !authorized {
		return c.Send(msgPasswordPrompt)
	}

	return h.show(c, msgMainMenu, mainMenuMarkup())
}

// handleCancel cancels current operation and resets state
func (h *Handler) handleCancel(c tele.Context) error {
	h.ResetState(c.Sender().ID)
	return h.show(c, msgMainMenu, mainMenuMarkup())
}
