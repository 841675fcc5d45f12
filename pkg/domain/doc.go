/*
Package domain contains the core domain models of the glyph capture pipeline.

It defines the entities that flow between the drawing surface, the capture
controller and the prediction service. This package is kept pure and free of
I/O, following Hexagonal Architecture principles.

# Key Entities

  - Stroke: A freehand polyline drawn on the surface, with its brush width.
  - Rect: A canvas-space rectangle; the crop region of a completed session.
  - Prediction: The character and confidence returned by the model.
  - GestureState / CanvasState: The observable state of the controller.
  - LifecycleHooks: Callbacks for observing sessions and predictions.
*/
package domain
