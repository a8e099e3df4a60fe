package services

import (
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions is the set of extensions accepted for uploaded
// media and images.
var allowedExtensions = map[string]bool{
	".mp4":  true,
	".webm": true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
}

// UploadService stores uploaded files under the configured root and
// hands back the relative path recorded in the catalog rows.
type UploadService struct {
	root string
}

func NewUploadService(root string) *UploadService {
	return &UploadService{root: root}
}

// AllowedFile reports whether the filename carries an accepted
// extension.
func AllowedFile(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return allowedExtensions[ext]
}

// SanitizeFilename strips directory components and any character
// outside [A-Za-z0-9._-], so a hostile filename cannot escape the
// upload root.
func SanitizeFilename(filename string) string {
	filename = filepath.Base(filename)
	filename = strings.ReplaceAll(filename, "\\", "")
	filename = strings.ReplaceAll(filename, "/", "")

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '_' || r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	name := strings.Trim(b.String(), ".")
	if name == "" {
		name = "upload"
	}
	return name
}

// Save validates and stores one multipart file, returning the path to
// record in the database. Stored names get a random prefix so two
// uploads of "cover.jpg" cannot clobber each other.
func (s *UploadService) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil || fh.Filename == "" {
		return "", fmt.Errorf("%w: no file uploaded", ErrInvalidFile)
	}
	if fh.Size == 0 {
		return "", fmt.Errorf("%w: empty file %q", ErrInvalidFile, fh.Filename)
	}
	if !AllowedFile(fh.Filename) {
		return "", fmt.Errorf("%w: extension of %q is not allowed", ErrInvalidFile, fh.Filename)
	}

	if err := os.MkdirAll(s.root, 0755); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + "_" + SanitizeFilename(fh.Filename)
	dest := filepath.Join(s.root, name)

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("failed to store uploaded file: %w", err)
	}

	slog.Debug("Stored uploaded file", "name", fh.Filename, "path", dest, "size", fh.Size)
	return dest, nil
}

// Remove deletes a previously stored file. Used to compensate when a
// database write fails after the file write.
func (s *UploadService) Remove(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove stored file", "path", path, "error", err)
	}
}
