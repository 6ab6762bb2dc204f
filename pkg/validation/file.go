package validation

import (
	"io"
	"mime/multipart"
	"net/http"
	"slices"

	"taskflow-gateway/pkg/config"
	apperrors "taskflow-gateway/pkg/errors"
)

const sniffLen = 512

// ValidateFile checks the size limit and the sniffed MIME type of an
// upload, then rewinds file. It returns the detected type.
func ValidateFile(fileHeader *multipart.FileHeader, file io.ReadSeeker, rules config.UploadConfig) (string, error) {
	if rules.MaxSizeMB > 0 {
		maxSizeBytes := int64(rules.MaxSizeMB) * 1024 * 1024
		if fileHeader.Size > maxSizeBytes {
			return "", apperrors.NewInvalidInputError("file size %.2f MB exceeds the %d MB limit", float64(fileHeader.Size)/1024/1024, rules.MaxSizeMB)
		}
	}
	if fileHeader.Size == 0 {
		return "", apperrors.NewInvalidInputError("file %q is empty", fileHeader.Filename)
	}

	buffer := make([]byte, sniffLen)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return "", apperrors.NewInvalidInputError("failed to read file")
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", apperrors.NewInvalidInputError("failed to process file")
	}
	buffer = buffer[:n]

	mimeType := http.DetectContentType(buffer)
	if isPossibleXml(mimeType) && isSvgSignature(buffer) {
		mimeType = "image/svg+xml"
	}

	if !slices.Contains(rules.AllowedMimeTypes, mimeType) {
		return "", apperrors.NewInvalidInputError("file type %s is not allowed", mimeType)
	}
	return mimeType, nil
}

func isPossibleXml(mime string) bool {
	return mime == "text/plain; charset=utf-8" ||
		mime == "text/xml; charset=utf-8" ||
		mime == "application/octet-stream"
}

func isSvgSignature(buf []byte) bool {
	return len(buf) > 5 && (string(buf[:4]) == "<svg" || string(buf[:5]) == "<?xml")
}
