package middleware

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	flashKey = "flash"
	stateKey = "oauth_state"
)

// Flash keeps one-shot user messages and the OAuth anti-forgery state in the server-side session.
type Flash struct {
	store *session.Store
}

func NewFlash(store *session.Store) *Flash {
	return &Flash{store: store}
}

// Add queues msg for the next rendered view.
func (f *Flash) Add(c *fiber.Ctx, msg string) error {
	sess, err := f.store.Get(c)
	if err != nil {
		return err
	}
	messages := decodeMessages(sess.Get(flashKey))
	messages = append(messages, msg)

	raw, err := json.Marshal(messages)
	if err != nil {
		return err
	}
	sess.Set(flashKey, string(raw))
	return sess.Save()
}

// Consume returns and clears the queued messages.
func (f *Flash) Consume(c *fiber.Ctx) ([]string, error) {
	sess, err := f.store.Get(c)
	if err != nil {
		return nil, err
	}
	messages := decodeMessages(sess.Get(flashKey))
	if len(messages) == 0 {
		return []string{}, nil
	}
	sess.Delete(flashKey)
	return messages, sess.Save()
}

// SetState remembers the anti-forgery state of a login attempt.
func (f *Flash) SetState(c *fiber.Ctx, state string) error {
	sess, err := f.store.Get(c)
	if err != nil {
		return err
	}
	sess.Set(stateKey, state)
	return sess.Save()
}

// TakeState returns the remembered state and forgets it.
func (f *Flash) TakeState(c *fiber.Ctx) (string, error) {
	sess, err := f.store.Get(c)
	if err != nil {
		return "", err
	}
	state, _ := sess.Get(stateKey).(string)
	sess.Delete(stateKey)
	return state, sess.Save()
}

func decodeMessages(v interface{}) []string {
	raw, ok := v.(string)
	if !ok || raw == "" {
		return nil
	}
	var messages []string
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		return nil
	}
	return messages
}
