package capture

import (
	"math"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/atomesh/internal/detector"
)

func TestDrawHand(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	DrawHand(&frame, detector.OpenPalmLandmarks())

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	if gocv.CountNonZero(gray) == 0 {
		t.Error("expected the skeleton to be drawn")
	}
}

func TestDrawHand_SkipsNonFinite(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	hand := detector.OpenPalmLandmarks()
	hand.Points[detector.Wrist].X = math.Inf(1)
	DrawHand(&frame, hand)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	if n := gocv.CountNonZero(gray); n != 0 {
		t.Errorf("expected blank frame, %d pixels drawn", n)
	}
}

func TestEncodeJPEG(t *testing.T) {
	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), DefaultHeight, DefaultWidth, gocv.MatTypeCV8UC3)
	defer frame.Close()

	data, err := EncodeJPEG(&frame)
	if err != nil {
		t.Fatalf("EncodeJPEG() error = %v", err)
	}
	if len(data) < 2 || data[0] != 0xFF || data[1] != 0xD8 {
		t.Error("expected JPEG start-of-image marker")
	}
}
