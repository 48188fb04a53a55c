package palette

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pssnndl/Recolorization/pkg/models"
)

// DefaultExternalURL is the Colormind-class palette API endpoint.
const DefaultExternalURL = "http://colormind.io/api/"

// ExternalClient fetches harmonious palettes from the external palette API.
// The API returns five colors; a deterministic sixth is derived so the
// result always fills the model's slots. Failures never propagate: every
// error path degrades to the built-in default palette.
type ExternalClient struct {
	url    string
	client *http.Client
}

// NewExternalClient creates a client for the given endpoint. An empty URL
// selects DefaultExternalURL; a zero timeout defaults to five seconds.
func NewExternalClient(url string, timeout time.Duration) *ExternalClient {
	if url == "" {
		url = DefaultExternalURL
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &ExternalClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type externalRequest struct {
	Model string `json:"model"`
	Input []any  `json:"input,omitempty"`
}

type externalResponse struct {
	Result [][3]int `json:"result"`
}

// Fetch requests a palette, optionally seeded with locked colors. Up to five
// seed colors occupy the API's input slots; remaining slots are generated.
// On any transport or shape error the built-in default palette is returned.
func (c *ExternalClient) Fetch(ctx context.Context, seed []models.Color) models.Palette {
	req := externalRequest{Model: "default"}
	if len(seed) > 0 {
		for i := 0; i < 5; i++ {
			if i < len(seed) {
				req.Input = append(req.Input, [3]int{int(seed[i].R), int(seed[i].G), int(seed[i].B)})
			} else {
				req.Input = append(req.Input, "N")
			}
		}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Default()
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return Default()
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return Default()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Default()
	}

	var parsed externalResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Default()
	}
	if len(parsed.Result) == 0 {
		return Default()
	}

	colors := make([]models.Color, 0, Slots)
	for _, rgb := range parsed.Result {
		colors = append(colors, models.Color{
			R: clampChannel(rgb[0]),
			G: clampChannel(rgb[1]),
			B: clampChannel(rgb[2]),
		})
	}
	if len(colors) > 5 {
		colors = colors[:5]
	}
	colors = append(colors, sixthColor(colors))

	p := models.Palette{Colors: colors, Source: models.ProvenanceFetched}
	return FitToSlots(p, Slots)
}

// sixthColor derives a deterministic sixth color as the complement of the
// channel-wise average of the fetched colors.
func sixthColor(colors []models.Color) models.Color {
	var r, g, b int
	for _, c := range colors {
		r += int(c.R)
		g += int(c.G)
		b += int(c.B)
	}
	n := len(colors)
	return models.Color{
		R: clampChannel(255 - r/n),
		G: clampChannel(255 - g/n),
		B: clampChannel(255 - b/n),
	}
}

func clampChannel(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// Default is the built-in fallback palette used whenever the external API
// is unreachable or returns garbage.
func Default() models.Palette {
	return models.Palette{
		Colors: []models.Color{
			{R: 0x2b, G: 0x2d, B: 0x42},
			{R: 0x8d, G: 0x99, B: 0xae},
			{R: 0xed, G: 0xf2, B: 0xf4},
			{R: 0xef, G: 0x23, B: 0x3c},
			{R: 0xd9, G: 0x02, B: 0x29},
			{R: 0xf4, G: 0xa2, B: 0x61},
		},
		Source: models.ProvenanceFetched,
	}
}
