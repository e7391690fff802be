package artifacts

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/corona10/goimagehash"
)

// DefaultSimilarityThreshold accepts two renderings as the same screen.
const DefaultSimilarityThreshold = 0.95

// Compare measures the perceptual similarity of two screenshot files and
// reports whether it meets the threshold. The score is in [0, 1]; 1 means
// perceptually identical. A threshold <= 0 uses the default.
func Compare(baselinePath, currentPath string, threshold float64) (bool, float64, error) {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	baseline, err := loadImage(baselinePath)
	if err != nil {
		return false, 0, err
	}
	current, err := loadImage(currentPath)
	if err != nil {
		return false, 0, err
	}

	baselineHash, err := goimagehash.PerceptionHash(baseline)
	if err != nil {
		return false, 0, fmt.Errorf("failed to hash baseline: %w", err)
	}
	currentHash, err := goimagehash.PerceptionHash(current)
	if err != nil {
		return false, 0, fmt.Errorf("failed to hash screenshot: %w", err)
	}

	distance, err := baselineHash.Distance(currentHash)
	if err != nil {
		return false, 0, err
	}
	// The perception hash is 64 bits; the score is the fraction of
	// matching bits.
	score := 1 - float64(distance)/64
	return score >= threshold, score, nil
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}
