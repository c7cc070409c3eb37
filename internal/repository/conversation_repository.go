package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"fundlens/internal/model"
)

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(conv *model.Conversation) error {
	if err := r.db.Create(conv).Error; err != nil {
		return fmt.Errorf("create conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByConversationID(conversationID string) (*model.Conversation, error) {
	var conv model.Conversation
	if err := r.db.Where("conversation_id = ?", conversationID).First(&conv).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get conversation failed: %w", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) List() ([]model.Conversation, error) {
	var convs []model.Conversation
	if err := r.db.Order("updated_at DESC").Find(&convs).Error; err != nil {
		return nil, fmt.Errorf("list conversations failed: %w", err)
	}
	return convs, nil
}

func (r *ConversationRepository) SetFund(conversationID string, fundID *uint) error {
	err := r.db.Model(&model.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Update("fund_id", fundID).Error
	if err != nil {
		return fmt.Errorf("set conversation fund failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) SetTitle(conversationID, title string) error {
	err := r.db.Model(&model.Conversation{}).
		Where("conversation_id = ?", conversationID).
		Update("title", title).Error
	if err != nil {
		return fmt.Errorf("set conversation title failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) Delete(conversationID string) error {
	if err := r.db.Where("conversation_id = ?", conversationID).Delete(&model.Message{}).Error; err != nil {
		return fmt.Errorf("delete conversation messages failed: %w", err)
	}
	if err := r.db.Where("conversation_id = ?", conversationID).Delete(&model.Conversation{}).Error; err != nil {
		return fmt.Errorf("delete conversation failed: %w", err)
	}
	return nil
}

func (r *ConversationRepository) CreateMessage(msg *model.Message) error {
	if err := r.db.Create(msg).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListRecentMessages returns the newest limit messages in chronological order.
// Older turns stay in storage for display but never reach the router.
func (r *ConversationRepository) ListRecentMessages(conversationID string, limit int) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list recent messages failed: %w", err)
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *ConversationRepository) ListMessages(conversationID string) ([]model.Message, error) {
	var messages []model.Message
	err := r.db.Where("conversation_id = ?", conversationID).
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *ConversationRepository) CountMessages(conversationID string) (int64, error) {
	var count int64
	err := r.db.Model(&model.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return count, nil
}
