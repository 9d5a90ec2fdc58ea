// Package notifications delivers push notifications for finalized batches and
// daemon errors through ntfy. Without a configured topic the service is a noop.
package notifications
