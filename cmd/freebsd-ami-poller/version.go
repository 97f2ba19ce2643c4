package main

// set at build time with -ldflags "-X main.version=..."
var version = "unknown"

func Version() string {
	return version
}

//
// end of file
//
