package glyph_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aretw0/glyph"
	"github.com/aretw0/glyph/pkg/adapters/memory"
	"github.com/aretw0/glyph/pkg/domain"
)

// ExampleNew shows a pad recognising one gesture with a scripted predictor.
// In production the predictor is the remote recognition client.
func ExampleNew() {
	predictor := memory.NewPredictor([]domain.Prediction{{Character: "a", Confidence: 0.97}})

	pad, err := glyph.New(predictor,
		glyph.WithDebounce(20*time.Millisecond),
		glyph.WithCanvasSize(200, 100),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer pad.Close()

	ctx := context.Background()
	pad.Start(ctx)
	<-pad.Ready()

	updates, cancel := pad.Subscribe()
	defer cancel()

	// One stroke; the session completes after the debounce elapses.
	pad.PointerDown(20, 20)
	pad.PointerMove(40, 60)
	pad.PointerUp(60, 20)

	select {
	case text := <-updates:
		fmt.Println(text)
	case <-time.After(5 * time.Second):
		fmt.Println("timed out")
	}
	// Output: a
}
