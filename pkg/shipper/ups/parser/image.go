package parser

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/tournevent/upslink/pkg/shipper/ups/document"
)

// Image is a decoded label or form rendition.
type Image struct {
	Format    string
	Extension string // "." followed by the lower-cased format
	Data      []byte
}

// SaveTemp writes the image to a new file in dir (os.TempDir when empty)
// and returns its path. The file name ends with the image extension.
func (i Image) SaveTemp(dir string) (string, error) {
	f, err := os.CreateTemp(dir, "ups-*"+i.Extension)
	if err != nil {
		return "", fmt.Errorf("creating image file: %w", err)
	}
	if _, err := f.Write(i.Data); err != nil {
		f.Close()
		return "", fmt.Errorf("writing image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing image file: %w", err)
	}
	return f.Name(), nil
}

func newImage(format string, encoded string) (Image, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return Image{}, malformed("Image is not valid base64", err)
	}
	return Image{
		Format:    format,
		Extension: "." + strings.ToLower(format),
		Data:      data,
	}, nil
}

// parseImage reads an image node with the format code under formatKey and
// the payload under dataKey. A node without payload yields nil.
func parseImage(node any, formatKey, dataKey string) (*Image, error) {
	encoded := document.Text(document.Lookup(node, dataKey))
	if encoded == "" {
		return nil, nil
	}
	img, err := newImage(document.Text(document.Lookup(node, formatKey, "Code")), encoded)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// parseForm reads a Form{Image{ImageFormat, GraphicImage}} node.
func parseForm(form any) (*Image, error) {
	if form == nil {
		return nil, nil
	}
	return parseImage(document.Lookup(form, "Image"), "ImageFormat", "GraphicImage")
}
