package gateway

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pssnndl/Recolorization/pkg/models"
)

func testAsset() *models.ImageAsset {
	return models.NewImageAsset([]byte{0x89, 0x50, 0x4e, 0x47}, "png", 64, 64)
}

func testPalette() models.Palette {
	colors := make([]models.Color, 6)
	for i := range colors {
		colors[i] = models.Color{R: uint8(i * 40)}
	}
	return models.Palette{Colors: colors, Source: models.ProvenanceUser}
}

func TestRecolorSuccess(t *testing.T) {
	want := []byte("recolored-image-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/infer" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req inferRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Palette) != 6 {
			t.Errorf("palette has %d slots, want 6", len(req.Palette))
		}
		json.NewEncoder(w).Encode(inferResponse{
			ResultB64: base64.StdEncoding.EncodeToString(want),
		})
	}))
	defer srv.Close()

	c := NewModelClient(srv.URL, time.Second)
	got, err := c.Recolor(context.Background(), testAsset(), testPalette())
	if err != nil {
		t.Fatalf("Recolor failed: %v", err)
	}
	if string(got) != string(want) {
		t.Errorf("result bytes mismatch")
	}
}

func TestRecolorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "cuda out of memory", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewModelClient(srv.URL, time.Second)
	_, err := c.Recolor(context.Background(), testAsset(), testPalette())
	var ierr *InferenceError
	if !errors.As(err, &ierr) {
		t.Fatalf("want InferenceError, got %v", err)
	}
	if ierr.Status != http.StatusInternalServerError {
		t.Errorf("status = %d", ierr.Status)
	}
}

func TestRecolorTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewModelClient(srv.URL, 50*time.Millisecond)
	_, err := c.Recolor(context.Background(), testAsset(), testPalette())
	var terr *TimeoutError
	if !errors.As(err, &terr) {
		t.Fatalf("want TimeoutError, got %v", err)
	}
}

func TestRecolorEmbeddedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inferResponse{Error: "palette shape invalid"})
	}))
	defer srv.Close()

	c := NewModelClient(srv.URL, time.Second)
	_, err := c.Recolor(context.Background(), testAsset(), testPalette())
	var ierr *InferenceError
	if !errors.As(err, &ierr) {
		t.Fatalf("want InferenceError, got %v", err)
	}
}

func TestRecolorNilAsset(t *testing.T) {
	c := NewModelClient("http://example.invalid", time.Second)
	if _, err := c.Recolor(context.Background(), nil, testPalette()); err == nil {
		t.Error("nil asset did not error")
	}
}
