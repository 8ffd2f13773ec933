// internal/handlers/block.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/artfolio/artfolio-backend/internal/i18n"
	"github.com/artfolio/artfolio-backend/internal/services"
	"github.com/artfolio/artfolio-backend/internal/utils"
)

type BlockHandler struct {
	blockService *services.BlockService
}

type blockRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

func NewBlockHandler(blockService *services.BlockService) *BlockHandler {
	return &BlockHandler{blockService: blockService}
}

// POST /blocks/:userId
func (h *BlockHandler) BlockUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	blockerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	var req blockRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
			return
		}
	}

	block, err := h.blockService.Block(blockerID, targetID, req.Reason)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"block":   block,
		"message": i18n.T(lang, i18n.KeyBlockCreated),
	})
}

// DELETE /blocks/:userId
func (h *BlockHandler) UnblockUser(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	blockerID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	if err := h.blockService.Unblock(blockerID, targetID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyBlockRemoved),
	})
}

// GET /blocks
func (h *BlockHandler) GetBlocks(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	blocks, err := h.blockService.GetBlocks(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"blocks": blocks})
}

// GET /blocks/check/:userId
func (h *BlockHandler) CheckBlock(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	targetID, ok := pathUUID(c, "userId")
	if !ok {
		return
	}

	status, err := h.blockService.MutualStatus(userID, targetID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"blocked":    status.ABlockedB,
		"blocked_by": status.BBlockedA,
		"any_block":  status.AnyBlock,
	})
}

// GET /blocks/ids
func (h *BlockHandler) GetBlockedIDs(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	ids, err := h.blockService.BlockedIDsOf(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"blocked_ids": ids})
}
