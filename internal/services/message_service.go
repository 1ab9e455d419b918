package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/google/uuid"
)

const maxMessageLength = 4000

type MessageService struct {
	store store.Provider
	users *UserService
	now   func() time.Time
}

func NewMessageService(provider store.Provider, users *UserService) *MessageService {
	return &MessageService{store: provider, users: users, now: time.Now}
}

// Send delivers text from sender to receiver. The receiver must be one of
// the sender's connected users.
func (s *MessageService) Send(ctx context.Context, sender *models.User, receiverID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: message text is required", ErrInvalidInput)
	}
	if len(text) > maxMessageLength {
		return nil, fmt.Errorf("%w: message too long (max %d characters)", ErrInvalidInput, maxMessageLength)
	}

	ok, err := s.users.IsConnected(ctx, sender, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotConnected
	}

	msg := &models.Message{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		ReceiverID: receiverID,
		Text:       text,
		Read:       false,
		Timestamp:  s.now(),
	}
	if err := s.store.CreateMessage(ctx, msg); err != nil {
		return nil, upstream("send message", err, nil)
	}

	slog.Info("message sent", "action", "message_send", "user_id", sender.ID, "receiver_id", receiverID)
	return msg, nil
}

// Conversation returns the messages between uid and otherID, oldest first,
// and marks those addressed to uid as read.
func (s *MessageService) Conversation(ctx context.Context, uid, otherID string) ([]models.Message, int, error) {
	msgs, err := s.store.ListMessages(ctx, store.MessageFilter{Participant: uid, Counterpart: otherID})
	if err != nil {
		return nil, 0, upstream("list messages", err, nil)
	}
	marked, err := s.store.MarkRead(ctx, uid, otherID)
	if err != nil {
		return nil, 0, upstream("mark read", err, nil)
	}
	return msgs, marked, nil
}

// Conversations lists the distinct users uid has exchanged messages with,
// most recent first.
func (s *MessageService) Conversations(ctx context.Context, uid string) ([]string, error) {
	msgs, err := s.store.ListMessages(ctx, store.MessageFilter{Participant: uid})
	if err != nil {
		return nil, upstream("list messages", err, nil)
	}
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for i := len(msgs) - 1; i >= 0; i-- {
		other := msgs[i].ReceiverID
		if other == uid {
			other = msgs[i].SenderID
		}
		if !seen[other] {
			seen[other] = true
			ids = append(ids, other)
		}
	}
	return ids, nil
}
