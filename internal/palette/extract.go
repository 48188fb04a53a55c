package palette

import (
	"bytes"
	"fmt"
	"image"
	"sort"

	// Assets are normalized to PNG before they reach extraction.
	_ "image/png"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/pssnndl/Recolorization/pkg/models"
)

const (
	// maxSamples caps the pixels fed to clustering; sampling uses a fixed
	// stride so the same image always produces the same sample set.
	maxSamples = 8192
	// kmeansIterations bounds the refinement loop.
	kmeansIterations = 24
)

type labPoint struct {
	l, a, b float64
}

func (p labPoint) distSq(q labPoint) float64 {
	dl := p.l - q.l
	da := p.a - q.a
	db := p.b - q.b
	return dl*dl + da*da + db*db
}

// ExtractFromImage clusters the asset's pixels in CIE Lab space and returns
// the k most significant colors, ordered by cluster weight descending with
// ties broken by centroid luminance descending. The whole pipeline is
// deterministic: identical bytes and k always yield the same palette.
func ExtractFromImage(asset *models.ImageAsset, k int) (models.Palette, error) {
	if asset == nil || len(asset.Bytes) == 0 {
		return models.Palette{}, fmt.Errorf("no image asset to extract from")
	}
	if k <= 0 {
		k = Slots
	}

	img, _, err := image.Decode(bytes.NewReader(asset.Bytes))
	if err != nil {
		return models.Palette{}, fmt.Errorf("decode image asset: %w", err)
	}

	points := samplePixels(img)
	if len(points) == 0 {
		return models.Palette{}, fmt.Errorf("image has no pixels to sample")
	}
	if k > len(points) {
		k = len(points)
	}

	centroids := seedCentroids(points, k)
	assign := make([]int, len(points))

	for iter := 0; iter < kmeansIterations; iter++ {
		changed := false
		for i, p := range points {
			best, bestDist := 0, p.distSq(centroids[0])
			for c := 1; c < k; c++ {
				if d := p.distSq(centroids[c]); d < bestDist {
					best, bestDist = c, d
				}
			}
			if assign[i] != best {
				assign[i] = best
				changed = true
			}
		}
		if iter > 0 && !changed {
			break
		}

		sums := make([]labPoint, k)
		counts := make([]int, k)
		for i, p := range points {
			c := assign[i]
			sums[c].l += p.l
			sums[c].a += p.a
			sums[c].b += p.b
			counts[c]++
		}
		for c := 0; c < k; c++ {
			// An emptied cluster keeps its previous centroid.
			if counts[c] > 0 {
				n := float64(counts[c])
				centroids[c] = labPoint{sums[c].l / n, sums[c].a / n, sums[c].b / n}
			}
		}
	}

	weights := make([]int, k)
	for _, c := range assign {
		weights[c]++
	}

	order := make([]int, k)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, b := order[i], order[j]
		if weights[a] != weights[b] {
			return weights[a] > weights[b]
		}
		return centroids[a].l > centroids[b].l
	})

	colors := make([]models.Color, 0, k)
	for _, c := range order {
		colors = append(colors, models.FromColorful(colorful.Lab(centroids[c].l, centroids[c].a, centroids[c].b)))
	}
	return models.Palette{Colors: colors, Source: models.ProvenanceExtracted}, nil
}

// samplePixels walks the image with a fixed stride chosen so at most
// maxSamples pixels are taken, converting each to Lab.
func samplePixels(img image.Image) []labPoint {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	total := w * h
	stride := 1
	for total/(stride*stride) > maxSamples {
		stride++
	}

	points := make([]labPoint, 0, total/(stride*stride)+1)
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		for x := bounds.Min.X; x < bounds.Max.X; x += stride {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue // fully transparent pixel
			}
			l, a, b := c.Lab()
			points = append(points, labPoint{l, a, b})
		}
	}
	return points
}

// seedCentroids picks initial centroids at evenly spaced luminance quantiles
// of the sample set, which is deterministic and spreads the seeds across the
// image's tonal range.
func seedCentroids(points []labPoint, k int) []labPoint {
	sorted := make([]labPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].l != sorted[j].l {
			return sorted[i].l < sorted[j].l
		}
		if sorted[i].a != sorted[j].a {
			return sorted[i].a < sorted[j].a
		}
		return sorted[i].b < sorted[j].b
	})

	centroids := make([]labPoint, k)
	for i := 0; i < k; i++ {
		idx := (2*i + 1) * len(sorted) / (2 * k)
		centroids[i] = sorted[idx]
	}
	return centroids
}
