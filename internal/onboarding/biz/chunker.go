package biz

import (
	"github.com/kart-io/onboarding-assistant/internal/pkg/textutil"
	"github.com/kart-io/onboarding-assistant/pkg/utils/errors"
)

// 默认分块参数（字符数）。
const (
	DefaultChunkWindow  = 1000
	DefaultChunkOverlap = 200
)

// ChunkOptions 分块配置。
type ChunkOptions struct {
	Window  int
	Overlap int
}

// DefaultChunkOptions 返回默认分块配置。
func DefaultChunkOptions() ChunkOptions {
	return ChunkOptions{Window: DefaultChunkWindow, Overlap: DefaultChunkOverlap}
}

// Validate 检查 window > 0 且 0 <= overlap < window。
func (o ChunkOptions) Validate() error {
	if o.Window <= 0 {
		return errors.ErrInvalidChunkParams.WithMessagef("window must be positive, got %d", o.Window)
	}
	if o.Overlap < 0 || o.Overlap >= o.Window {
		return errors.ErrInvalidChunkParams.WithMessagef("overlap must be in [0, %d), got %d", o.Window, o.Overlap)
	}
	return nil
}

// Chunk splits text into windows of window characters. Consecutive windows
// share exactly overlap characters and start at multiples of window-overlap;
// only the last window may be shorter. Text no longer than window yields one
// chunk equal to text, and empty text yields none.
func Chunk(text string, window, overlap int) ([]string, error) {
	if err := (ChunkOptions{Window: window, Overlap: overlap}).Validate(); err != nil {
		return nil, err
	}
	return textutil.SplitIntoChunks(text, window, overlap), nil
}
