package service

import (
	"encoding/json"

	"woofpack/internal/models"
	"woofpack/internal/repository"

	"github.com/rs/zerolog"
)

// RealtimePusher delivers an event into a user's personal room if that user
// is connected anywhere. Implemented by the gateway hub.
type RealtimePusher interface {
	PushToUser(userID uint, event string, payload interface{})
}

// NotificationService persists notifications and pushes them over the
// gateway. Delivery is fire-and-forget: a disconnected user pulls the
// durable record on next login, and failed pushes are not retried.
type NotificationService struct {
	repo   *repository.NotificationRepository
	pusher RealtimePusher
	log    zerolog.Logger
}

func NewNotificationService(repo *repository.NotificationRepository, pusher RealtimePusher, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, pusher: pusher, log: log}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	if s.pusher != nil {
		s.pusher.PushToUser(userID, "notification:new", n)
	}
	return nil
}

// NotifyMatchRequest records a play-date request from one owner to another.
func (s *NotificationService) NotifyMatchRequest(targetUserID uint, fromUser *models.User, message string) error {
	return s.Notify(targetUserID, "MATCH_REQUEST", "New play-date request",
		fromUser.Username+" wants to meet up",
		map[string]interface{}{
			"from_user_id":  fromUser.ID,
			"from_username": fromUser.Username,
			"message":       message,
		})
}

// NotifyProposalCreated announces a new proposal to its author (receipt).
func (s *NotificationService) NotifyProposalCreated(authorID uint, proposalID uint, title string) error {
	return s.Notify(authorID, "PROPOSAL_CREATED", "Proposal submitted",
		"Your proposal is open for voting: "+title,
		map[string]interface{}{"proposal_id": proposalID})
}
