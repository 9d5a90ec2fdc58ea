// Package snipeit implements the HTTP client for the Snipe-IT asset registry.
//
// The client keeps failure detail as typed errors (ErrNotFound for a missing
// entity, ErrNotConfigured for absent credentials, wrapped transport errors
// for everything else) so callers can log the real cause. The lookup resolver
// is the layer that collapses all of them into a degraded nil result.
package snipeit
