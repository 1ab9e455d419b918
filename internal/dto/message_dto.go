package dto

import "github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/models"

type SendMessageRequest struct {
	ReceiverID string `json:"receiver_id"`
	Text       string `json:"text"`
}

type ConversationResponse struct {
	Messages   []models.Message `json:"messages"`
	MarkedRead int              `json:"marked_read"`
}

type ConversationListResponse struct {
	UserIDs []string `json:"user_ids"`
}
