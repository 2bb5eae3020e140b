// Package sos implements the emergency request flow.
//
// A Machine drives one request at a time through type selection, detail
// capture, provider search and confirmation, or through the abbreviated
// quick path for critical cases. Every submitted request is upserted by id
// into the persisted history and announced on the event bus.
//
// Delayed steps (provider search, quick dispatch, auto-dismiss) run on
// goroutines bound to the flow's context. Cancel, Close and a new Initiate
// cancel that context, and each step re-checks that its flow is still the
// current one before touching state.
package sos
