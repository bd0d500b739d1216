package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/sandevgo/lumina/internal/core"
)

const maxImageBytes = 20 << 20

func isImageCommand(line string) bool {
	return line == imageCommand || strings.HasPrefix(line, imageCommand+" ")
}

// parseImageCommand splits "/image <path> [caption]".
func parseImageCommand(line string) (string, string, error) {
	rest := strings.TrimSpace(strings.TrimPrefix(line, imageCommand))
	if rest == "" {
		return "", "", errors.New("missing path")
	}
	path, caption, _ := strings.Cut(rest, " ")
	return path, strings.TrimSpace(caption), nil
}

func loadImage(path string) (*core.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	if info.Size() > maxImageBytes {
		return nil, fmt.Errorf("image is larger than %d MB", maxImageBytes>>20)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return nil, fmt.Errorf("%s is not an image (%s)", path, mt.String())
	}
	return &core.Image{Data: data, MIME: mt.String()}, nil
}
