package imagegen

import (
	"encoding/base64"
	"errors"
	"regexp"
)

var ErrInvalidDataURL = errors.New("invalid data url format")

var dataURLPattern = regexp.MustCompile(`^data:(image/[\w.+-]+);base64,(.+)$`)

// Image is raw image bytes with their MIME type.
type Image struct {
	MIMEType string
	Data     []byte
}

// ParseDataURL decodes a "data:image/<kind>;base64,<payload>" string.
func ParseDataURL(s string) (Image, error) {
	m := dataURLPattern.FindStringSubmatch(s)
	if m == nil {
		return Image{}, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return Image{}, ErrInvalidDataURL
	}
	if len(data) == 0 {
		return Image{}, ErrInvalidDataURL
	}
	return Image{MIMEType: m[1], Data: data}, nil
}
