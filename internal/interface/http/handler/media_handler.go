package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/lostfound-backend/internal/interface/http/dto"
	"github.com/ignatzorin/lostfound-backend/internal/interface/http/response"
	"github.com/ignatzorin/lostfound-backend/internal/usecase/media"
)

type MediaHandler struct {
	uploadUC *media.UploadImageUseCase
}

func NewMediaHandler(uploadUC *media.UploadImageUseCase) *MediaHandler {
	return &MediaHandler{uploadUC: uploadUC}
}

// UploadImage принимает multipart-поле file и возвращает URL для image_url или proof_image_url.
func (h *MediaHandler) UploadImage(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "файл не передан")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "не удалось открыть файл")
		return
	}
	defer file.Close()

	url, err := h.uploadUC.Execute(c.Request.Context(), fileHeader.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.UploadImageResponse{URL: url})
}
