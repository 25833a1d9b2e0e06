// Package storage persists runs as flat numeric arrays.
//
// Each run lives in its own directory under the store root:
//
//	<model>_<unixnano>/
//	    metadata.json   run parameters, body names, columns, metrics
//	    states.csv      time plus one column per recorded quantity
//	    history.npy     joint-state dump of n-body runs, (ticks, n*4)
//
// Parameter sweeps are saved separately as a two-column .npy array.
package storage
