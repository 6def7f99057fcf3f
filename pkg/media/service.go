package media

import (
	"bytes"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/inkstonebooks/inkstone/pkg/errcodes"
)

// maxCoverWidth caps stored cover images; anything wider gets downscaled.
const maxCoverWidth = 600

// Service stores uploaded images under the media directory.
type Service struct {
	mediaDir string
}

// NewService creates a new media service rooted at mediaDir.
func NewService(mediaDir string) *Service {
	return &Service{mediaDir: mediaDir}
}

// SaveImageOptions are the options for SaveImage.
type SaveImageOptions struct {
	Data []byte
	// Cover images get downscaled to a bounded width.
	Cover bool
}

// SaveImage sniffs the payload, rejects non-images, and writes the file under
// the media dir with a random name. It returns the public URL path.
func (s *Service) SaveImage(opts SaveImageOptions) (string, error) {
	mtype := mimetype.Detect(opts.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", errcodes.ValidationError("Only image uploads are allowed")
	}

	data := opts.Data
	ext := mtype.Extension()

	if opts.Cover {
		scaled, scaledExt, err := downscale(data, ext)
		if err != nil {
			return "", err
		}
		data = scaled
		ext = scaledExt
	}

	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return "", errors.WithStack(err)
	}

	name := uuid.New().String() + ext
	path := filepath.Join(s.mediaDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.WithStack(err)
	}

	return "/media/" + name, nil
}

// downscale bounds an image's width, preserving aspect ratio. Formats the
// stdlib can't decode (gif frames aside, webp etc.) are stored as-is.
func downscale(data []byte, ext string) ([]byte, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data, ext, nil
	}

	bounds := src.Bounds()
	if bounds.Dx() <= maxCoverWidth {
		return data, ext, nil
	}

	targetW := maxCoverWidth
	targetH := bounds.Dy() * targetW / bounds.Dx()

	dst := image.NewRGBA(image.Rect(0, 0, targetW, targetH))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	buf := &bytes.Buffer{}
	if format == "png" {
		if err := png.Encode(buf, dst); err != nil {
			return nil, "", errors.WithStack(err)
		}
		return buf.Bytes(), ".png", nil
	}
	if err := jpeg.Encode(buf, dst, &jpeg.Options{Quality: 80}); err != nil {
		return nil, "", errors.WithStack(err)
	}
	return buf.Bytes(), ".jpg", nil
}
