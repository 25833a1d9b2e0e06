// Package viz provides a terminal view of a running simulation.
//
// The live view is a Bubble Tea program that advances a [Scene] on a
// simulated-time scheduler every frame and draws the bodies on a
// braille [Canvas]. The camera follows the bodies with spring smoothing.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Restart from the initial condition
//	+/-   - Faster/slower simulated time
//	G     - Toggle GIF recording
//	?     - Show help overlay
//	Q     - Quit
package viz
