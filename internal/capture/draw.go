package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/atomesh/internal/detector"
)

var (
	connectorColor = color.RGBA{G: 255, A: 255}
	landmarkColor  = color.RGBA{R: 255, A: 255}
)

// DrawHand draws the hand skeleton onto frame: green connectors and red
// landmark dots. Landmarks are in normalized coordinates.
func DrawHand(frame *gocv.Mat, hand detector.HandLandmarks) {
	if frame == nil || frame.Empty() || !hand.Finite() {
		return
	}

	w, h := frame.Cols(), frame.Rows()
	toPixel := func(p detector.Point3D) image.Point {
		return image.Point{X: int(p.X * float64(w)), Y: int(p.Y * float64(h))}
	}

	for _, c := range detector.HandConnections {
		if c[0] >= len(hand.Points) || c[1] >= len(hand.Points) {
			continue
		}
		gocv.Line(frame, toPixel(hand.Points[c[0]]), toPixel(hand.Points[c[1]]), connectorColor, 5)
	}

	for _, p := range hand.Points {
		gocv.Circle(frame, toPixel(p), 4, landmarkColor, -1)
	}
}

// EncodeJPEG encodes frame for the preview stream.
func EncodeJPEG(frame *gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, *frame)
	if err != nil {
		return nil, err
	}
	defer buf.Close()

	data := make([]byte, buf.Len())
	copy(data, buf.GetBytes())
	return data, nil
}
