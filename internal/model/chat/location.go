package chat

// GeolocationSample holds a best-effort position fix reported by the
// client. Absence of a sample is a normal state, not an error.
type GeolocationSample struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}
