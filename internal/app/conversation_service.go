package app

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"fundlens/internal/model"
	"fundlens/internal/repository"
)

// ConversationService manages conversation lifecycles. Message turns are
// appended by the query service; this service only handles the containers.
type ConversationService struct {
	convRepo *repository.ConversationRepository
	fundRepo *repository.FundRepository
}

func NewConversationService(convRepo *repository.ConversationRepository, fundRepo *repository.FundRepository) *ConversationService {
	return &ConversationService{convRepo: convRepo, fundRepo: fundRepo}
}

func (s *ConversationService) Create(fundID *uint, title string) (*model.Conversation, error) {
	if fundID != nil {
		fund, err := s.fundRepo.GetByID(*fundID)
		if err != nil {
			return nil, err
		}
		if fund == nil {
			return nil, ErrFundNotFound
		}
	}

	conv := &model.Conversation{
		ConversationID: uuid.NewString(),
		FundID:         fundID,
		Title:          truncateRunes(strings.TrimSpace(title), conversationTitleLimit),
	}
	if err := s.convRepo.Create(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

func (s *ConversationService) List() ([]model.Conversation, error) {
	return s.convRepo.List()
}

// Get returns a conversation together with its full message history in
// chronological order.
func (s *ConversationService) Get(conversationID string) (*model.Conversation, []model.Message, error) {
	conv, err := s.convRepo.GetByConversationID(conversationID)
	if err != nil {
		return nil, nil, err
	}
	if conv == nil {
		return nil, nil, ErrConversationNotFound
	}
	messages, err := s.convRepo.ListMessages(conversationID)
	if err != nil {
		return nil, nil, err
	}
	return conv, messages, nil
}

func (s *ConversationService) Delete(conversationID string) error {
	conv, err := s.convRepo.GetByConversationID(conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}
	return s.convRepo.Delete(conversationID)
}

func (s *ConversationService) SetFund(conversationID string, fundID *uint) error {
	conv, err := s.convRepo.GetByConversationID(conversationID)
	if err != nil {
		return err
	}
	if conv == nil {
		return ErrConversationNotFound
	}
	if fundID != nil {
		fund, err := s.fundRepo.GetByID(*fundID)
		if err != nil {
			return err
		}
		if fund == nil {
			return fmt.Errorf("%w: fund %d", ErrFundNotFound, *fundID)
		}
	}
	return s.convRepo.SetFund(conversationID, fundID)
}
