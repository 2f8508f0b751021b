// Command edustream is the command line interface for the edustream
// content daemon. It hosts the daemon itself (edustream daemon) and the
// client commands that talk to a running daemon over its control API.
package main
