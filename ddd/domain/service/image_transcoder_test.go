package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/ddd/domain/entity"
	"storefront-service/ddd/domain/vo"
)

func defaultTranscodeOptions() TranscodeOptions {
	return TranscodeOptions{MaxWidth: 1200, MaxHeight: 1200, Quality: 0.8, OnError: vo.TranscodeFail}
}

func TestTranscodeCompliantJPEGRoundTrip(t *testing.T) {
	src := jpegBytes(t, 320, 200, 95)
	raw := entity.NewRawAsset("photo.jpg", "image/jpeg", src)

	out, err := NewImageTranscoder().Transcode(context.Background(), raw, defaultTranscodeOptions())
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", out.MediaType)
	assert.Equal(t, vo.Dimensions{Width: 320, Height: 200}, out.Dimensions)
	assert.LessOrEqual(t, out.Size(), raw.Size)
	assert.True(t, out.Transcoded)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(out.Content))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 320, cfg.Width)
	assert.Equal(t, 200, cfg.Height)
}

func TestTranscodeCompliantPNGKeepsType(t *testing.T) {
	raw := entity.NewRawAsset("logo.png", "image/png", pngBytes(t, 64, 48))

	out, err := NewImageTranscoder().Transcode(context.Background(), raw, defaultTranscodeOptions())
	require.NoError(t, err)
	assert.Equal(t, "image/png", out.MediaType)
	assert.Equal(t, "logo.png", out.Name)
	assert.LessOrEqual(t, out.Size(), raw.Size)
}

func TestTranscodeResizesWithinBounds(t *testing.T) {
	raw := entity.NewRawAsset("wide.png", "image/png", pngBytes(t, 2400, 600))

	out, err := NewImageTranscoder().Transcode(context.Background(), raw, defaultTranscodeOptions())
	require.NoError(t, err)
	assert.Equal(t, vo.Dimensions{Width: 1200, Height: 300}, out.Dimensions)

	cfg, _, err := image.DecodeConfig(bytes.NewReader(out.Content))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestTranscodeFormatOverride(t *testing.T) {
	raw := entity.NewRawAsset("shot.png", "image/png", pngBytes(t, 100, 100))
	opts := defaultTranscodeOptions()
	opts.Format = vo.ImageFormatJPEG

	out, err := NewImageTranscoder().Transcode(context.Background(), raw, opts)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", out.MediaType)
	assert.Equal(t, "shot.jpg", out.Name)

	_, format, err := image.DecodeConfig(bytes.NewReader(out.Content))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

func TestTranscodeDecodeErrorPolicies(t *testing.T) {
	corrupt := entity.NewRawAsset("broken.jpg", "image/jpeg", []byte("definitely not a jpeg"))
	tr := NewImageTranscoder()

	_, err := tr.Transcode(context.Background(), corrupt, defaultTranscodeOptions())
	var de *entity.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "broken.jpg", de.Name)

	opts := defaultTranscodeOptions()
	opts.OnError = vo.TranscodePassthrough
	out, err := tr.Transcode(context.Background(), corrupt, opts)
	require.NoError(t, err)
	assert.False(t, out.Transcoded)
	assert.Equal(t, corrupt.Content, out.Content)
	assert.Equal(t, "image/jpeg", out.MediaType)
}

func TestTranscodeEncodeErrorIsDistinct(t *testing.T) {
	raw := entity.NewRawAsset("photo.jpg", "image/jpeg", jpegBytes(t, 40, 40, 90))
	opts := defaultTranscodeOptions()
	opts.Quality = 1.5
	opts.OnError = vo.TranscodePassthrough

	_, err := NewImageTranscoder().Transcode(context.Background(), raw, opts)
	var ee *entity.EncodeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "encode", entity.ErrorKind(err))
}

func TestTranscodeInvalidBoundsIsEncodeError(t *testing.T) {
	raw := entity.NewRawAsset("photo.png", "image/png", pngBytes(t, 40, 30))
	opts := defaultTranscodeOptions()
	opts.MaxWidth = 0
	opts.OnError = vo.TranscodePassthrough

	_, err := NewImageTranscoder().Transcode(context.Background(), raw, opts)
	var ee *entity.EncodeError
	require.ErrorAs(t, err, &ee)
	assert.ErrorIs(t, err, vo.ErrInvalidDimensions)
	assert.Equal(t, "encode", entity.ErrorKind(err))

	var de *entity.DecodeError
	assert.False(t, errors.As(err, &de))
}

func TestTranscodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	raw := entity.NewRawAsset("photo.jpg", "image/jpeg", jpegBytes(t, 10, 10, 90))
	_, err := NewImageTranscoder().Transcode(ctx, raw, defaultTranscodeOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateVariants(t *testing.T) {
	raw := entity.NewRawAsset("chair.jpg", "image/jpeg", jpegBytes(t, 1000, 800, 90))

	variants, err := NewImageTranscoder().GenerateVariants(context.Background(), raw, vo.ImageFormatSource)
	require.NoError(t, err)
	require.Len(t, variants, 4)

	assert.Equal(t, "original", variants[0].Name)
	assert.Equal(t, vo.Dimensions{Width: 1000, Height: 800}, variants[0].Asset.Dimensions)

	bounds := map[string][2]int{"thumbnail": {150, 150}, "medium": {400, 300}, "large": {800, 600}}
	for _, v := range variants[1:] {
		b := bounds[v.Name]
		assert.True(t, v.Asset.Dimensions.Fits(b[0], b[1]), v.Name)
		assert.Equal(t, "chair_"+v.Name+".jpg", v.Asset.Name)
	}
}
