// Command crcscan is the operator CLI for the CRC scanner daemon. It resolves
// scanned identifiers, appends items to the working batch, and manages
// finalized exports over the daemon's HTTP API.
package main
