package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"

	"github.com/guggenheimg/cakebot/core/logger"
	"github.com/guggenheimg/cakebot/core/telegram/sender"
)

var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher wires the asynchronous sender used by helper functions.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

func sendAsync(c tele.Context, action string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	if err := disp.Enqueue(ctx, action, run); err != nil {
		if errors.Is(err, sender.ErrQueueFull) || errors.Is(err, sender.ErrQueueClosed) {
			logger.Warn(ctx, "tg.sender", "queue.fallback",
				slog.String("action", action),
				slog.String("err", err.Error()),
			)
			return run()
		}
		return err
	}
	return nil
}

// SendText sends raw text (no parse mode) to the current recipient.
func SendText(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := sendOptions("", markup)
	return sendAsync(c, "send.text", func() error {
		return c.Send(text, opts)
	})
}

// SendHTML sends a message with HTML parse mode and optional markup.
func SendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	opts := sendOptions(tele.ModeHTML, markup)
	return sendAsync(c, "send.html", func() error {
		return c.Send(text, opts)
	})
}

// SendPhotoHTML sends a photo by reference with an HTML caption.
func SendPhotoHTML(c tele.Context, url, caption string) error {
	photo := &tele.Photo{File: tele.FromURL(url), Caption: caption}
	opts := sendOptions(tele.ModeHTML, nil)
	return sendAsync(c, "send.photo", func() error {
		return c.Send(photo, opts)
	})
}

// EditOrSendHTML edits the current message in place, or sends a new one
// when there is nothing to edit. Used by inline-button flows.
func EditOrSendHTML(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, sendOptions(tele.ModeHTML, markup))
}

func sendOptions(mode tele.ParseMode, markup []*tele.ReplyMarkup) *tele.SendOptions {
	var rm *tele.ReplyMarkup
	if len(markup) > 0 {
		rm = markup[0]
	}
	return &tele.SendOptions{ParseMode: mode, ReplyMarkup: rm}
}
