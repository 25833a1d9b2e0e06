// Package render draws recorded runs to static PNG figures and animated
// GIFs using gonum/plot.
package render
