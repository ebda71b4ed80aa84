package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/h2non/filetype"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"
)

const (
	// MaxDimension наибольшая ширина или высота сохраняемого изображения.
	MaxDimension = 1600
	JPEGQuality  = 85
)

var ErrUnsupportedFormat = errors.New("imaging: неподдерживаемый формат изображения")

// Разрешённые типы по магическим байтам и допустимые для них расширения.
var allowed = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
	"image/webp": {".webp"},
}

// Result изображение, готовое к записи в хранилище.
type Result struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Process проверяет реальный тип файла, уменьшает изображение до MaxDimension
// и перекодирует его в JPEG. ext расширение исходного имени файла.
func Process(data []byte, ext string) (*Result, error) {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return nil, ErrUnsupportedFormat
	}

	exts, ok := allowed[kind.MIME.Value]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, kind.MIME.Value)
	}
	if ext != "" && !containsExt(exts, strings.ToLower(ext)) {
		return nil, fmt.Errorf("imaging: расширение %s не соответствует реальному типу %s", ext, kind.MIME.Value)
	}

	img, err := decode(kind.MIME.Value, data)
	if err != nil {
		return nil, fmt.Errorf("imaging: не удалось декодировать изображение: %w", err)
	}
	img = downscale(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("imaging: не удалось закодировать JPEG: %w", err)
	}

	b := img.Bounds()
	return &Result{
		Data:        buf.Bytes(),
		ContentType: "image/jpeg",
		Ext:         ".jpg",
		Width:       b.Dx(),
		Height:      b.Dy(),
	}, nil
}

func decode(mime string, data []byte) (image.Image, error) {
	r := bytes.NewReader(data)
	switch mime {
	case "image/jpeg":
		return jpeg.Decode(r)
	case "image/png":
		return png.Decode(r)
	case "image/gif":
		return gif.Decode(r)
	case "image/webp":
		return webp.Decode(r)
	}
	return nil, ErrUnsupportedFormat
}

// downscale сохраняет пропорции; изображение в пределах maxDim возвращается как есть.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	newW, newH := w, h
	if w > h {
		newW = maxDim
		newH = int(float64(h) * float64(maxDim) / float64(w))
	} else {
		newH = maxDim
		newW = int(float64(w) * float64(maxDim) / float64(h))
	}
	newW = max(newW, 1)
	newH = max(newH, 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func containsExt(exts []string, ext string) bool {
	for _, e := range exts {
		if e == ext {
			return true
		}
	}
	return false
}
