/*
Package ports defines the driven ports (interfaces) of the glyph capture pipeline.

These interfaces decouple the capture controller from the drawing canvas, the
recognition model and the text output, so the controller can be exercised with
a rasterised canvas, a remote model, or in-memory fakes.

# Key Interfaces

  - Surface: The freehand drawing canvas (pointer binding, objects, pixel readback).
  - Predictor: The recognition model with a one-time readiness signal.
  - OutputSink: The append-only text accumulator.
  - Clock: Source of cancelable timers for the debounce window.
*/
package ports
