package response

var (
	ErrInvalidRequestFormat = Error("Invalid request format")
	ErrInvalidID            = Error("Invalid id")
	ErrPoemNotFound         = Error("Poem not found")
	ErrImageNotFound        = Error("Image not found")
	ErrNoFile               = Error("No file provided")
	ErrFileTooLarge         = Error("File too large")
	ErrInvalidFileType      = Error("Only images, videos and PDF files are allowed")
	ErrInternal             = Error("Internal server error")
)
