package vo

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimensions 尺寸参数必须全部为正数
var ErrInvalidDimensions = errors.New("invalid dimensions")

// Dimensions 图片宽高
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

// Fits 是否落在给定上限内
func (d Dimensions) Fits(maxWidth, maxHeight int) bool {
	return d.Width <= maxWidth && d.Height <= maxHeight
}

// CalculateDimensions 按比例缩放到 maxWidth x maxHeight 以内。
// 先按宽度收敛，再用（可能已缩放的）高度按高度收敛，最后四舍五入。
func CalculateDimensions(width, height, maxWidth, maxHeight int) (Dimensions, error) {
	if width <= 0 || height <= 0 || maxWidth <= 0 || maxHeight <= 0 {
		return Dimensions{}, fmt.Errorf("%w: %dx%d within %dx%d", ErrInvalidDimensions, width, height, maxWidth, maxHeight)
	}

	w, h := float64(width), float64(height)
	if w > float64(maxWidth) {
		h = h * float64(maxWidth) / w
		w = float64(maxWidth)
	}
	if h > float64(maxHeight) {
		w = w * float64(maxHeight) / h
		h = float64(maxHeight)
	}

	return Dimensions{Width: roundPositive(w), Height: roundPositive(h)}, nil
}

// roundPositive 四舍五入，极端长宽比下至少保留 1 像素
func roundPositive(v float64) int {
	r := int(math.Round(v))
	if r < 1 {
		return 1
	}
	return r
}
