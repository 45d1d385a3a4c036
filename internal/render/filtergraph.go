package render

import (
	"fmt"
	"strings"

	"broll/internal/broll"
)

// GraphOptions controls how the overlay filtergraph is generated.
type GraphOptions struct {
	// FrameWidth and FrameHeight describe the base video stream.
	FrameWidth  int
	FrameHeight int
	// OverlayWidthRatio is the overlay width as a fraction of the frame width.
	OverlayWidthRatio float64
	// ColorGrade appends a gentle eq pass to the composited output.
	ColorGrade bool
}

const (
	overlayMargin  = 20
	slideInSeconds = 0.4
	fadeSeconds    = 0.5
)

// BuildFilterGraph produces the ffmpeg filter_complex script compositing
// every plan event over the base video. Image inputs are expected at input
// indexes 1..len(events) in event order; the composited stream is labeled
// [vout].
func BuildFilterGraph(plan *broll.Plan, opts GraphOptions) (string, error) {
	if plan == nil || len(plan.Events) == 0 {
		return "", fmt.Errorf("filtergraph: plan has no events")
	}
	if opts.FrameWidth <= 0 || opts.FrameHeight <= 0 {
		return "", fmt.Errorf("filtergraph: invalid frame size %dx%d", opts.FrameWidth, opts.FrameHeight)
	}
	ratio := opts.OverlayWidthRatio
	if ratio <= 0 || ratio >= 1 {
		ratio = 0.35
	}
	overlayWidth := even(int(float64(opts.FrameWidth) * ratio))
	overlayHeight := even(overlayWidth * 9 / 16)

	var graph strings.Builder
	for i, event := range plan.Events {
		if i > 0 {
			graph.WriteString(";")
		}
		graph.WriteString(imageChain(i, event, overlayWidth, overlayHeight))
	}

	base := "[0:v]"
	for i, event := range plan.Events {
		out := fmt.Sprintf("[v%d]", i)
		graph.WriteString(";")
		graph.WriteString(base)
		graph.WriteString(fmt.Sprintf("[ov%d]", i))
		graph.WriteString(overlayFilter(event, opts.FrameWidth, opts.FrameHeight))
		graph.WriteString(out)
		base = out
	}

	graph.WriteString(";")
	graph.WriteString(base)
	if opts.ColorGrade {
		graph.WriteString("eq=contrast=1.05:saturation=1.1:brightness=0.02")
	} else {
		graph.WriteString("null")
	}
	graph.WriteString("[vout]")
	return graph.String(), nil
}

// imageChain prepares one still image: scale it to the overlay size, apply
// the per-event animation, and shift its timestamps to the insertion window.
func imageChain(index int, event broll.InsertionEvent, width, height int) string {
	var chain strings.Builder
	chain.WriteString(fmt.Sprintf("[%d:v]", index+1))

	switch event.Effect {
	case broll.EffectZoom:
		// Ken Burns style creep on the still. Oversample before zoompan so
		// the pan does not shimmer.
		chain.WriteString(fmt.Sprintf(
			"scale=%d:-2,zoompan=z='min(1+0.002*on,1.15)':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=25,",
			width*4, int(event.Duration*25), width, height))
	case broll.EffectFade:
		chain.WriteString(fmt.Sprintf("scale=%d:%d,format=yuva420p,", width, height))
		chain.WriteString(fmt.Sprintf("fade=t=in:st=0:d=%.2f:alpha=1,", fadeSeconds))
		chain.WriteString(fmt.Sprintf("fade=t=out:st=%.2f:d=%.2f:alpha=1,", event.Duration-fadeSeconds, fadeSeconds))
	default:
		chain.WriteString(fmt.Sprintf("scale=%d:%d,", width, height))
	}

	chain.WriteString(fmt.Sprintf("setpts=PTS-STARTPTS+%.3f/TB", event.StartTime))
	chain.WriteString(fmt.Sprintf("[ov%d]", index))
	return chain.String()
}

// overlayFilter positions one prepared overlay on the frame for the event's
// window. Slide animates the x coordinate in from the nearest frame edge.
func overlayFilter(event broll.InsertionEvent, frameWidth, frameHeight int) string {
	x, y := positionExpr(event.Position)
	if event.Effect == broll.EffectSlide {
		x = slideExpr(event, x)
	}
	return fmt.Sprintf("overlay=x='%s':y='%s':enable='between(t,%.3f,%.3f)'",
		x, y, event.StartTime, event.End())
}

func positionExpr(position broll.Position) (x, y string) {
	margin := fmt.Sprintf("%d", overlayMargin)
	switch position {
	case broll.PositionLeft:
		return margin, "(main_h-overlay_h)/2"
	case broll.PositionTopLeft:
		return margin, margin
	case broll.PositionTopRight:
		return "main_w-overlay_w-" + margin, margin
	case broll.PositionBottomLeft:
		return margin, "main_h-overlay_h-" + margin
	case broll.PositionBottomRight:
		return "main_w-overlay_w-" + margin, "main_h-overlay_h-" + margin
	case broll.PositionCenter:
		return "(main_w-overlay_w)/2", "(main_h-overlay_h)/2"
	default:
		return "main_w-overlay_w-" + margin, "(main_h-overlay_h)/2"
	}
}

// slideExpr animates from off-screen to the target x over the slide-in
// window. Left-anchored positions enter from the left edge, everything else
// from the right.
func slideExpr(event broll.InsertionEvent, targetX string) string {
	progress := fmt.Sprintf("min(1,(t-%.3f)/%.2f)", event.StartTime, slideInSeconds)
	switch event.Position {
	case broll.PositionLeft, broll.PositionTopLeft, broll.PositionBottomLeft:
		return fmt.Sprintf("-overlay_w+((%s)+overlay_w)*%s", targetX, progress)
	default:
		return fmt.Sprintf("main_w-(main_w-(%s))*%s", targetX, progress)
	}
}

func even(v int) int {
	if v%2 != 0 {
		return v + 1
	}
	return v
}
