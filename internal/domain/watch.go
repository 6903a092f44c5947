package domain

// Watch pairs a route with the trip parameters to price it under.
// A check run resolves every watch exactly once.
type Watch struct {
	Route  Route
	Params TripParameters
}
