// Command timeweave aligns canonical text with recognizer timestamps and
// writes the resulting temporal index.
//
// Subcommands:
//
//	index     build one index from a text file and a timestamp payload
//	batch     build many indexes from a TOML manifest
//	inspect   render the layers of a stored index
//	cache     show, prune or clear the result cache
//	config    create, validate or print the configuration
package main
