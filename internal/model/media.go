package model

import "errors"

const (
	MaxAvatarSizeBytes = 5 * 1024 * 1024
	AvatarWidth        = 200
	AvatarHeight       = 200
	AvatarFolder       = "avatars"
	AvatarExt          = ".jpg"
	AvatarCacheControl = "public, max-age=31536000" // 1 year

	MaxPinFileSizeBytes = 20 * 1024 * 1024
	PinFileFolder       = "pins"
)

// Avatar uploads accept image types only; pin files additionally accept
// the video and audio types from the pin enum.
var allowedAvatarTypes = map[string]struct{}{
	FileTypeJPEG: {},
	FileTypePNG:  {},
	FileTypeGIF:  {},
}

// IsAllowedAvatarType reports if the content type may be used as an avatar.
func IsAllowedAvatarType(contentType string) bool {
	_, ok := allowedAvatarTypes[contentType]
	return ok
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge    = "FILE_TOO_LARGE"
	CodeInvalidFileType = "INVALID_FILE_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrInvalidFileType = errors.New("invalid file type")
)

// UploadResult is the stable file descriptor handed back to clients and
// stored on pins. ID is the object key inside the bucket.
type UploadResult struct {
	ID   string `json:"file_id"`
	URL  string `json:"file_url"`
	Type string `json:"file_type"`
}
