package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

var allowedImageExtensions = []string{".jpg", ".jpeg", ".png", ".heic", ".webp"}

func StrPointer(str string) *string {
	if str == "" {
		return nil
	}
	return &str
}

// ItemImageKey builds a fresh object key for an item image, e.g. items/7/3f2a....jpg.
func ItemImageKey(userID uint, fileName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		ext = ".jpg"
	}
	if !slices.Contains(allowedImageExtensions, ext) {
		return "", fmt.Errorf("unsupported image extension %q", ext)
	}
	return fmt.Sprintf("items/%d/%s%s", userID, uuid.NewString(), ext), nil
}

// ProcessedImageKey is where the normalized version of an upload is stored.
func ProcessedImageKey(objectKey string) string {
	return strings.TrimSuffix(objectKey, filepath.Ext(objectKey)) + "-processed.png"
}

func ReadFileFromUrl(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %v", err)
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get response: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch file, status code: %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
