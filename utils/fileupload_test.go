package utils

import (
	"bytes"
	"mime/multipart"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestFileHeader creates a mock multipart.FileHeader for testing
func createTestFileHeader(filename string, size int64, content []byte) *multipart.FileHeader {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", "application/octet-stream")
	part, _ := writer.CreatePart(h)
	part.Write(content)
	writer.Close()

	reader := multipart.NewReader(body, writer.Boundary())
	form, _ := reader.ReadForm(int64(len(content)) + 1024)
	defer form.RemoveAll()

	if len(form.File["file"]) > 0 {
		fileHeader := form.File["file"][0]
		// Override size for testing purposes
		fileHeader.Size = size
		return fileHeader
	}

	return nil
}

func TestValidateAttachment_AllowedFormats(t *testing.T) {
	for ext := range AllowedExtensions {
		content := []byte("fake content")
		fileHeader := createTestFileHeader("model"+ext, int64(len(content)), content)
		require.NotNil(t, fileHeader)

		err := ValidateAttachment(fileHeader)
		assert.NoError(t, err, "Extension %s should be allowed", ext)
	}
}

func TestValidateAttachment_FileTooLarge(t *testing.T) {
	content := []byte("fake stl content")
	fileHeader := createTestFileHeader("large.stl", 51*1024*1024, content)
	require.NotNil(t, fileHeader)

	err := ValidateAttachment(fileHeader)
	assert.Error(t, err)

	fileErr, ok := err.(*FileUploadError)
	require.True(t, ok, "Error should be of type FileUploadError")
	assert.Equal(t, "FILE_TOO_LARGE", fileErr.Code)
	assert.Contains(t, fileErr.Message, "File size exceeds maximum allowed size")
}

func TestValidateAttachment_InvalidFormat(t *testing.T) {
	tests := []string{"payload.exe", "macro.docm", "noextension"}

	for _, filename := range tests {
		t.Run(filename, func(t *testing.T) {
			content := []byte("fake content")
			fileHeader := createTestFileHeader(filename, int64(len(content)), content)
			require.NotNil(t, fileHeader)

			err := ValidateAttachment(fileHeader)
			assert.Error(t, err)

			fileErr, ok := err.(*FileUploadError)
			require.True(t, ok, "Error should be of type FileUploadError")
			assert.Equal(t, "INVALID_FILE_FORMAT", fileErr.Code)
		})
	}
}

func TestValidateAttachment_CaseInsensitive(t *testing.T) {
	content := []byte("fake stl content")
	fileHeader := createTestFileHeader("SCAN.STL", int64(len(content)), content)
	require.NotNil(t, fileHeader)

	err := ValidateAttachment(fileHeader)
	assert.NoError(t, err, "Validation should be case-insensitive")
}

func TestNewFileID(t *testing.T) {
	first := NewFileID("crown.stl")
	second := NewFileID("crown.stl")

	assert.True(t, strings.HasPrefix(first, "file-"))
	assert.True(t, strings.HasSuffix(first, "crown.stl"))
	assert.NotEqual(t, first, second, "Each attachment gets a unique id")
}

func TestFileUploadError_Error(t *testing.T) {
	err := &FileUploadError{
		Code:    "TEST_CODE",
		Message: "Test error message",
	}

	assert.Equal(t, "Test error message", err.Error())
}
