// Package cmd implements the driveguard command line interface.
//
// The root command dispatches to serve (start the HTTP API and metrics
// servers), auth (run the OAuth consent flow from the terminal) and
// version.
package cmd
