package ffprobe_test

import (
	"testing"

	"broll/internal/media/ffprobe"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080, "avg_frame_rate": "30000/1001"},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "channels": 2, "duration": "19.84"}
  ],
  "format": {"filename": "clip.mp4", "nb_streams": 2, "duration": "20.02", "format_name": "mov,mp4"}
}`

func TestParseExtractsDurationAndVideoStream(t *testing.T) {
	result, err := ffprobe.Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := result.DurationSeconds(); got != 20.02 {
		t.Fatalf("unexpected duration: %v", got)
	}
	stream, ok := result.VideoStream()
	if !ok {
		t.Fatal("expected video stream")
	}
	if stream.Width != 1920 || stream.Height != 1080 {
		t.Fatalf("unexpected dimensions: %dx%d", stream.Width, stream.Height)
	}
	if result.AudioStreamCount() != 1 {
		t.Fatalf("unexpected audio count: %d", result.AudioStreamCount())
	}
	fps := result.FrameRate()
	if fps < 29.9 || fps > 30.0 {
		t.Fatalf("unexpected frame rate: %v", fps)
	}
}

func TestParseFallsBackToStreamDuration(t *testing.T) {
	payload := `{"streams":[{"codec_type":"audio","duration":"12.5"}],"format":{"filename":"a.wav"}}`
	result, err := ffprobe.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := result.DurationSeconds(); got != 12.5 {
		t.Fatalf("expected stream duration fallback, got %v", got)
	}
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	if _, err := ffprobe.Parse([]byte("{nope")); err == nil {
		t.Fatal("expected parse error")
	}
}
