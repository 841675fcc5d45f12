/*
Package glyph turns handwritten gestures into text.

A Pad owns a drawing canvas, a capture controller and an output buffer.
Pointer strokes drawn close together in time form one gesture session. When
no new stroke starts within the debounce window the controller crops the
ink (scaled by the device pixel ratio) out of the canvas backing store and
hands it to a Predictor. The recognised character is appended to the output
in session order and the canvas is blanked on the next stroke.

# Architecture

The package is a facade over a small hexagonal core:

  - pkg/domain: gesture states, geometry, predictions and lifecycle events.
  - pkg/ports: the Surface, Predictor, OutputSink and Clock contracts.
  - pkg/adapters: the gg-backed canvas, the remote recognition client, a
    redis prediction cache, in-memory doubles, and HTTP and MCP front ends.
  - internal/runtime: the debounced capture controller.

# Usage

	predictor := remote.New(remote.Config{URL: "http://localhost:9000"})
	pad, err := glyph.New(predictor, glyph.WithInputMode(domain.InputTouch))
	if err != nil {
		log.Fatal(err)
	}
	defer pad.Close()

	pad.Start(ctx)
	go predictor.Warm(ctx)
	<-pad.Ready()

	pad.DrawStroke(domain.Point{X: 10, Y: 10}, domain.Point{X: 10, Y: 40})

Input received before the predictor is ready is ignored.
*/
package glyph
