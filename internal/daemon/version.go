package daemon

// Version identifies the daemon build reported by the status endpoint.
const Version = "1.0.0"
