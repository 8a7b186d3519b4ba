package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"
	"github.com/rs/zerolog"
)

// ErrNoText is returned when an OCR engine reads nothing from an image.
var ErrNoText = errors.New("no text extracted")

type TesseractClient struct {
	dataPath string
	logger   *zerolog.Logger
}

func NewTesseractClient(dataPath string, logger *zerolog.Logger) *TesseractClient {
	return &TesseractClient{
		dataPath: dataPath,
		logger:   logger,
	}
}

func (tc *TesseractClient) Name() string { return "tesseract" }

// ExtractText runs Tesseract over an encoded image.
func (tc *TesseractClient) ExtractText(ctx context.Context, imageData []byte) (string, error) {
	text, _, err := tc.ExtractTextAndQuality(ctx, imageData)
	return text, err
}

// ExtractTextAndQuality returns the recognised text and the mean word
// confidence (0-100). A failed confidence pass yields 0, not an error.
func (tc *TesseractClient) ExtractTextAndQuality(ctx context.Context, imageData []byte) (string, float64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if tc.dataPath != "" {
		client.SetTessdataPrefix(tc.dataPath)
	}
	if err := client.SetLanguage("eng"); err != nil {
		return "", 0, fmt.Errorf("failed to set language: %w", err)
	}
	// sign-in sheets are tabular; treat the page as one block of rows
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return "", 0, fmt.Errorf("failed to set page segmentation: %w", err)
	}

	if err := client.SetImageFromBytes(imageData); err != nil {
		return "", 0, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", 0, fmt.Errorf("failed to extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", 0, ErrNoText
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		tc.logger.Debug().Err(err).Msg("Tesseract confidence unavailable")
		return text, 0, nil
	}

	var total float64
	for _, box := range boxes {
		total += box.Confidence
	}
	avg := 0.0
	if len(boxes) > 0 {
		avg = total / float64(len(boxes))
	}

	tc.logger.Debug().Int("chars", len(text)).Float64("confidence", avg).Msg("Tesseract extraction complete")
	return text, avg, nil
}

// EncodePNG encodes a decoded image for the byte-oriented OCR engines.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	return buf.Bytes(), nil
}
