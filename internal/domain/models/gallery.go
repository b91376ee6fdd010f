package models

import "path"

// DefaultMimeType is stored for rows that predate the mimetype column.
const DefaultMimeType = "image/jpeg"

// GalleryItem ссылается на загруженный медиафайл (изображение, видео или PDF)
type GalleryItem struct {
	ID         int64  `json:"id" db:"id"`
	Filename   string `json:"filename" db:"filename"`       // имя файла на диске, сгенерировано сервером
	MimeType   string `json:"mimetype" db:"mimetype"`       // image/*, video/* или application/pdf
	Alt        string `json:"alt" db:"alt"`                 // описание
	UploadedAt string `json:"uploaded_at" db:"uploaded_at"` // RFC 3339
}

// URL returns the public path the file is served under.
func (g GalleryItem) URL(baseURL string) string {
	if baseURL == "" {
		baseURL = "/uploads"
	}
	return path.Join(baseURL, g.Filename)
}
