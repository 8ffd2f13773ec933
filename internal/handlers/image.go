// internal/handlers/image.go
package handlers

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/artfolio/artfolio-backend/internal/services"
	"github.com/artfolio/artfolio-backend/internal/utils"
)

type ImageHandler struct {
	imageService *services.ImageService
}

func NewImageHandler(imageService *services.ImageService) *ImageHandler {
	return &ImageHandler{imageService: imageService}
}

// GET /images
func (h *ImageHandler) GetImages(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := services.ImageFilter{
		Params:   toServiceParams(params),
		ViewerID: optionalUserID(c),
		Search:   params.Search,
	}

	if ownerIDStr := c.Query("owner_id"); ownerIDStr != "" {
		if ownerID, err := uuid.Parse(ownerIDStr); err == nil {
			filter.OwnerID = &ownerID
		}
	}
	if tag := c.Query("tag"); tag != "" {
		filter.Tag = tag
	}

	images, total, err := h.imageService.GetImages(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(images, total, params))
}

// GET /images/:id
func (h *ImageHandler) GetImage(c *gin.Context) {
	imageID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	image, err := h.imageService.GetImage(imageID, optionalUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, image)
}

// POST /images
func (h *ImageHandler) Upload(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, "artwork file is required", nil)
		return
	}
	defer file.Close()

	price := 0.0
	if priceStr := c.PostForm("price"); priceStr != "" {
		if parsed, err := strconv.ParseFloat(priceStr, 64); err == nil {
			price = parsed
		}
	}

	var tags []string
	if tagsStr := c.PostForm("tags"); tagsStr != "" {
		tags = strings.Split(tagsStr, ",")
	}

	image, err := h.imageService.Upload(services.CreateImageInput{
		OwnerID:     ownerID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Tags:        tags,
		Price:       price,
	}, file, header)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.CreatedResponse(c, image)
}

// DELETE /images/:id
func (h *ImageHandler) Delete(c *gin.Context) {
	ownerID, ok := currentUserID(c)
	if !ok {
		return
	}
	imageID, ok := pathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.imageService.Delete(imageID, ownerID); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"deleted": true})
}
