package utils

import (
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"
	"sync/atomic"
)

const (
	// MaxFileSize is 50MB in bytes; scan meshes can be large
	MaxFileSize = 50 * 1024 * 1024
)

// AllowedExtensions are the attachment formats a case accepts: scan meshes,
// CAD exports, photos and documents.
var AllowedExtensions = map[string]bool{
	".stl":  true,
	".ply":  true,
	".obj":  true,
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".pdf":  true,
	".zip":  true,
}

// FileUploadError represents a file upload validation error
type FileUploadError struct {
	Code    string
	Message string
}

func (e *FileUploadError) Error() string {
	return e.Message
}

// ValidateAttachment validates the uploaded file format and size
func ValidateAttachment(fileHeader *multipart.FileHeader) error {
	if fileHeader.Size > MaxFileSize {
		return &FileUploadError{
			Code:    "FILE_TOO_LARGE",
			Message: fmt.Sprintf("File size exceeds maximum allowed size of %d MB", MaxFileSize/(1024*1024)),
		}
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !AllowedExtensions[ext] {
		return &FileUploadError{
			Code:    "INVALID_FILE_FORMAT",
			Message: fmt.Sprintf("File format %q is not allowed", ext),
		}
	}

	// Reject anything that looks like a path
	base := filepath.Base(fileHeader.Filename)
	if base != fileHeader.Filename || strings.Contains(fileHeader.Filename, "..") {
		return &FileUploadError{
			Code:    "INVALID_FILENAME",
			Message: "Invalid filename",
		}
	}

	return nil
}

var fileSeq uint64

// NewFileID returns a process-unique id for a case file attachment.
func NewFileID(filename string) string {
	return fmt.Sprintf("file-%d-%s", atomic.AddUint64(&fileSeq, 1), filepath.Base(filename))
}
