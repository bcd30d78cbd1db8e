// Package files locates the yearly accident extracts and writes run outputs.
//
// Discovery lists the *.csv files of the input directory in name order,
// skipping files whose name carries the exclusion marker (speed-camera
// extracts by default), and derives each file's year from the four digits
// before the extension.
//
// Manager writes outputs atomically through a temporary file and rename.
//
//	discovery := files.NewDiscovery("")
//	yearly, err := discovery.FindYearlyCSVFiles("dados", "Radares")
package files
