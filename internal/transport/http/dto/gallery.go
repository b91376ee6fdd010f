package dto

import (
	"mime/multipart"

	"agadeepaoli/internal/domain/models"
)

// GalleryItemResponse is a gallery row with its public URL.
type GalleryItemResponse struct {
	ID         int64  `json:"id"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mimetype"`
	Alt        string `json:"alt"`
	UploadedAt string `json:"uploaded_at"`
	URL        string `json:"url"`
}

func NewGalleryItemResponse(item models.GalleryItem, baseURL string) GalleryItemResponse {
	return GalleryItemResponse{
		ID:         item.ID,
		Filename:   item.Filename,
		MimeType:   item.MimeType,
		Alt:        item.Alt,
		UploadedAt: item.UploadedAt,
		URL:        item.URL(baseURL),
	}
}

func NewGalleryItemResponses(items []models.GalleryItem, baseURL string) []GalleryItemResponse {
	out := make([]GalleryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewGalleryItemResponse(item, baseURL))
	}
	return out
}

// UploadImageInput carries the multipart "image" part and optional alt text.
type UploadImageInput struct {
	File *multipart.FileHeader
	Alt  string
}
