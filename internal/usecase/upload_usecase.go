package usecase

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/nfnt/resize"
)

const maxUploadBytes = 5 << 20 // 5MB

const thumbnailWidth = 320

// UploadUsecase は画像ファイルの保存。
// 拡張子・Content-Type・実デコードの三段チェックで画像以外を弾く。
type UploadUsecase struct {
	dir string
}

func NewUploadUsecase(dir string) *UploadUsecase {
	return &UploadUsecase{dir: dir}
}

type SavedImage struct {
	Path          string `json:"path"`
	ThumbnailPath string `json:"thumbnail_path"`
}

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// SaveImage は画像を保存してサムネイルも作る。
// ファイル名は衝突しないようUUIDで振り直す。
func (u *UploadUsecase) SaveImage(r io.Reader, originalName string) (SavedImage, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedImageExts[ext] {
		return SavedImage{}, NewHTTPError(http.StatusBadRequest, "only jpg/png images allowed")
	}

	data, err := io.ReadAll(io.LimitReader(r, maxUploadBytes+1))
	if err != nil {
		return SavedImage{}, NewHTTPError(http.StatusInternalServerError, "read error")
	}
	if len(data) > maxUploadBytes {
		return SavedImage{}, NewHTTPError(http.StatusBadRequest, "file too large")
	}
	if len(data) == 0 {
		return SavedImage{}, NewHTTPError(http.StatusBadRequest, "empty file")
	}

	//Content-Typeの実体チェック（拡張子偽装対策）
	contentType := http.DetectContentType(data)
	if contentType != "image/jpeg" && contentType != "image/png" {
		return SavedImage{}, NewHTTPError(http.StatusBadRequest, "only jpg/png images allowed")
	}

	//最後に実際にデコードできるか確認
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return SavedImage{}, NewHTTPError(http.StatusBadRequest, "broken image")
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return SavedImage{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}

	name := uuid.NewString()
	fullName := fmt.Sprintf("%s%s", name, ext)
	fullPath := filepath.Join(u.dir, fullName)

	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return SavedImage{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}

	//サムネイル（幅320px、縦横比維持）
	thumb := resize.Resize(thumbnailWidth, 0, img, resize.Lanczos3)
	thumbName := fmt.Sprintf("%s_thumb%s", name, ext)
	thumbPath := filepath.Join(u.dir, thumbName)

	var tbuf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&tbuf, thumb)
	default:
		err = jpeg.Encode(&tbuf, thumb, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		_ = os.Remove(fullPath)
		return SavedImage{}, NewHTTPError(http.StatusInternalServerError, "thumbnail error")
	}
	if err := os.WriteFile(thumbPath, tbuf.Bytes(), 0o644); err != nil {
		_ = os.Remove(fullPath)
		return SavedImage{}, NewHTTPError(http.StatusInternalServerError, "storage error")
	}

	return SavedImage{
		Path:          "/uploads/" + fullName,
		ThumbnailPath: "/uploads/" + thumbName,
	}, nil
}
