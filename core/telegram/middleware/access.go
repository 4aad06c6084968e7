package middleware

import tele "gopkg.in/telebot.v4"

// RoleCheck reports whether the participant may run the wrapped handler.
type RoleCheck func(userID int64) bool

// RequireRole gates a handler behind a role check. A rejected
// participant gets the fixed denial message and no state changes.
func RequireRole(check RoleCheck, denial string) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			sender := c.Sender()
			if sender == nil || check == nil || !check(sender.ID) {
				return c.Send(denial)
			}
			return next(c)
		}
	}
}
