// internal/services/block_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/artfolio/artfolio-backend/internal/models"
)

type BlockService struct {
	db *gorm.DB
}

// MutualBlockStatus describes the block relation between two users in both
// directions.
type MutualBlockStatus struct {
	ABlockedB bool `json:"a_blocked_b"`
	BBlockedA bool `json:"b_blocked_a"`
	AnyBlock  bool `json:"any_block"`
}

func NewBlockService(db *gorm.DB) *BlockService {
	return &BlockService{db: db}
}

// Block creates a directed block edge from blocker to target.
func (s *BlockService) Block(blockerID, targetID uuid.UUID, reason string) (*models.Block, error) {
	if blockerID == targetID {
		return nil, NewValidationError("you cannot block yourself")
	}

	var target models.User
	if err := s.db.First(&target, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewNotFoundError("user")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	var existing int64
	if err := s.db.Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", blockerID, targetID).
		Count(&existing).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if existing > 0 {
		return nil, NewConflictError("user is already blocked")
	}

	block := &models.Block{
		BlockerID: blockerID,
		BlockedID: targetID,
		Reason:    reason,
	}

	if err := s.db.Create(block).Error; err != nil {
		// The unique index backstops the race between the check and the insert.
		if isUniqueViolation(err) {
			return nil, NewConflictError("user is already blocked")
		}
		return nil, fmt.Errorf("failed to create block: %w", err)
	}

	return block, nil
}

// Unblock removes the edge. The row is hard-deleted; a later re-block creates
// a fresh edge.
func (s *BlockService) Unblock(blockerID, targetID uuid.UUID) error {
	result := s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, targetID).
		Delete(&models.Block{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete block: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return NewNotFoundError("block")
	}

	return nil
}

// IsBlocked reports whether a blocks b. Directional: a blocking b says
// nothing about b blocking a.
func (s *BlockService) IsBlocked(a, b uuid.UUID) (bool, error) {
	var count int64
	err := s.db.Model(&models.Block{}).
		Where("blocker_id = ? AND blocked_id = ?", a, b).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check block: %w", err)
	}

	return count > 0, nil
}

// MutualStatus checks both directions at once.
func (s *BlockService) MutualStatus(a, b uuid.UUID) (*MutualBlockStatus, error) {
	var blocks []models.Block
	err := s.db.
		Where("(blocker_id = ? AND blocked_id = ?) OR (blocker_id = ? AND blocked_id = ?)", a, b, b, a).
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check blocks: %w", err)
	}

	status := &MutualBlockStatus{}
	for _, block := range blocks {
		if block.BlockerID == a {
			status.ABlockedB = true
		} else {
			status.BBlockedA = true
		}
	}
	status.AnyBlock = status.ABlockedB || status.BBlockedA

	return status, nil
}

// BlockedIDsOf returns the ids blocked by userID, used to build exclusion
// filters on content-listing queries.
func (s *BlockService) BlockedIDsOf(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := s.db.Model(&models.Block{}).
		Where("blocker_id = ?", userID).
		Pluck("blocked_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blocked ids: %w", err)
	}

	return ids, nil
}

// GetBlocks lists the blocks owned by userID, newest first.
func (s *BlockService) GetBlocks(userID uuid.UUID) ([]models.Block, error) {
	var blocks []models.Block
	err := s.db.Preload("Blocked").
		Where("blocker_id = ?", userID).
		Order("created_at DESC").
		Find(&blocks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blocks: %w", err)
	}

	return blocks, nil
}

// isUniqueViolation matches the duplicate-key error from Postgres (23505) and
// falls back to gorm's translated error for other drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
