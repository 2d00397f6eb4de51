// Package viewport turns navigation gestures into render parameters.
//
// Controls is the operator-facing state: the fractal.Params of the view plus
// the preview interval, thread count and animation length. It round-trips
// through a URL-safe string with EncodeControls and DecodeControls.
//
// A Navigator owns one Controls value, the in-progress selection box and a
// bounded undo history of (Controls, thumbnail) pairs. Every gesture that
// changes the view ends in a render through a Renderer, usually a Binding of
// a fractal.Scene to a fractal.WorkerPool.
//
//	scene, _ := fractal.NewScene(800, 600, 8)
//	pool, _ := fractal.NewWorkerPool(8)
//	nav := viewport.NewNavigator(viewport.NewBinding(scene, pool), viewport.DefaultControls())
//
//	nav.BeginSelect(100, 100)
//	nav.MoveSelect(300, 250)
//	zoomed, err := nav.EndSelect(ctx)
package viewport
