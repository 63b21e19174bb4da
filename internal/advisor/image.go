package advisor

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// MaxImages is how many photos a single request may carry.
const MaxImages = 2

// ErrUnsupportedFile is returned when a selected file is not an image.
var ErrUnsupportedFile = errors.New("selected file is not an image")

// Image is a photo payload ready to attach to a model request.
type Image struct {
	Path     string
	Data     []byte
	MIMEType string
}

// LoadImage reads a file and verifies it is an image by sniffing its
// content, not its extension. Non-image files fail with ErrUnsupportedFile.
func LoadImage(path string) (Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return Image{}, fmt.Errorf("%s: %w", path, ErrUnsupportedFile)
	}

	return Image{Path: path, Data: data, MIMEType: mime}, nil
}
