package client

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaddleClientExtractText(t *testing.T) {
	var got paddleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"msg":"","results":[[{"text":"John Doe 07:55","confidence":0.97},{"text":"Jane Smith 08:00","confidence":0.95}]]}`))
	}))
	defer srv.Close()

	logger := zerolog.Nop()
	pc := NewPaddleClient(srv.URL, &logger)

	text, err := pc.ExtractText(context.Background(), []byte("img"))
	require.NoError(t, err)
	assert.Equal(t, "John Doe 07:55\nJane Smith 08:00\n", text)

	require.Len(t, got.Images, 1)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("img")), got.Images[0])
}

func TestPaddleClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, "boom", nil},
		{"bad json", http.StatusOK, "{", nil},
		{"empty result", http.StatusOK, `{"results":[[]]}`, ErrNoText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			logger := zerolog.Nop()
			_, err := NewPaddleClient(srv.URL, &logger).ExtractText(context.Background(), []byte("img"))
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestPaddleClientDefaultURL(t *testing.T) {
	logger := zerolog.Nop()
	assert.Equal(t, defaultPaddleURL, NewPaddleClient("", &logger).apiURL)
}

func TestQRReaderNoCode(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	img.Set(10, 10, color.Black)

	data, err := EncodePNG(img)
	require.NoError(t, err)

	_, err = NewQRReader().DecodeBytes(data)
	assert.ErrorIs(t, err, ErrNoQRCode)
}
