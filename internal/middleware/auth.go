package middleware

import (
	"context"
	"strings"
	"time"

	"lexicon/internal/service"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	msgInternalError  = "Произошла ошибка. Попробуйте позже."
	msgPasswordPrompt = "Привет! Если ты не знаешь пароль, поздравляю - ты пукал, а коль знаешь - вводи:"
)

// AuthMiddleware creates authentication middleware.
// It registers every sender and lets unauthorized users reach only
// /start and plain text, which the text handler treats as a password.
func AuthMiddleware(authService *service.AuthService, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil {
				return nil
			}

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Ensure user exists
			if err := authService.EnsureUserExists(ctx, sender.ID, sender.Username); err != nil {
				logger.Error("Failed to ensure user exists in middleware", zap.Error(err))
				return c.Send(msgInternalError)
			}

			// Check authorization
			authorized, err := authService.IsAuthorized(ctx, sender.ID)
			if err != nil {
				logger.Error("Failed to check authorization in middleware", zap.Error(err))
				return c.Send(msgInternalError)
			}

			if authorized || allowedUnauthorized(c) {
				return next(c)
			}

			logger.Debug("Unauthorized update rejected", zap.Int64("user_id", sender.ID))
			if c.Callback() != nil {
				_ = c.Respond()
			}
			return c.Send(msgPasswordPrompt)
		}
	}
}

func allowedUnauthorized(c tele.Context) bool {
	if c.Callback() != nil {
		return false
	}
	text := strings.TrimSpace(c.Text())
	return text == "/start" || (text != "" && !strings.HasPrefix(text, "/"))
}
