package vo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExponentialBackoffStrictlyIncreases(t *testing.T) {
	delay := ExponentialBackoff(100 * time.Millisecond)
	assert.Equal(t, 100*time.Millisecond, delay(0))
	assert.Equal(t, 200*time.Millisecond, delay(1))
	assert.Equal(t, 400*time.Millisecond, delay(2))
	for i := 1; i < 10; i++ {
		assert.Greater(t, delay(i), delay(i-1))
	}
}

func TestDefaultPolicyRetryDelays(t *testing.T) {
	p := NewExponentialRetryPolicy(3, time.Second)
	assert.Equal(t, 2*time.Second, p.DelayFor(1))
	assert.Equal(t, 4*time.Second, p.DelayFor(2))
	assert.Equal(t, 8*time.Second, p.DelayFor(3))
}

func TestRetryPolicyWaitUsesInjectedSleep(t *testing.T) {
	var waited []time.Duration
	p := RetryPolicy{
		MaxRetries: 3,
		Delay:      ExponentialBackoff(time.Second),
		Sleep: func(_ context.Context, d time.Duration) error {
			waited = append(waited, d)
			return nil
		},
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, p.Wait(context.Background(), i))
	}
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, waited)
}

func TestSleepContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := SleepContext(ctx, time.Hour)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParsePolicies(t *testing.T) {
	tp, err := ParseTranscodeErrorPolicy("")
	require.NoError(t, err)
	assert.Equal(t, TranscodePassthrough, tp)
	tp, err = ParseTranscodeErrorPolicy("fail")
	require.NoError(t, err)
	assert.Equal(t, TranscodeFail, tp)
	_, err = ParseTranscodeErrorPolicy("ignore")
	assert.Error(t, err)

	fp, err := ParseFileErrorPolicy("abortBatch")
	require.NoError(t, err)
	assert.Equal(t, FileErrorAbortBatch, fp)
	fp, err = ParseFileErrorPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FileErrorSkip, fp)
	_, err = ParseFileErrorPolicy("abort")
	assert.Error(t, err)
}

func TestImageFormat(t *testing.T) {
	f, err := ParseImageFormat("JPEG")
	require.NoError(t, err)
	assert.Equal(t, ImageFormatJPEG, f)
	assert.Equal(t, "image/jpeg", f.MediaType())
	assert.Equal(t, "photo.webp", ImageFormatWebP.ReplaceExtension("photo.jpg"))
	assert.Equal(t, "photo.jpeg", ImageFormatJPEG.ReplaceExtension("photo.jpeg"))
	assert.Equal(t, "photo.png", ImageFormatSource.ReplaceExtension("photo.png"))
	assert.Equal(t, ImageFormatPNG, FormatFromMediaType("image/png"))
	_, err = ParseImageFormat("tiff")
	assert.Error(t, err)
}
