package signals

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageDecoder декодирует JPEG, PNG и GIF кадры
type ImageDecoder struct{}

func (ImageDecoder) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: пустые данные", ErrUndecodableFrame)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableFrame, err)
	}
	if b := img.Bounds(); b.Empty() {
		return nil, fmt.Errorf("%w: кадр нулевого размера", ErrUndecodableFrame)
	}
	return img, nil
}
