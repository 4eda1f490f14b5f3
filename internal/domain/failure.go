package domain

// Failure is a flattened non-passing case read back from a saved report
type Failure struct {
	Suite    string  `json:"suite"`
	Name     string  `json:"name"`
	Status   Status  `json:"status"`
	Message  string  `json:"message"`
	Seconds  float64 `json:"seconds"`
	Resolved bool    `json:"resolved,omitempty"` // Toggled in the interactive viewer only
}

// Key identifies the case within a report
func (f Failure) Key() string {
	return f.Suite + "/" + f.Name
}
