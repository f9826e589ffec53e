package harness

// TraceEvent records one applied entry, in application order.
type TraceEvent struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if the expectation and every assertion hold.
	Pass bool `json:"pass"`

	// Order is the resolved order for the requested host type.
	Order []string `json:"order"`

	// Trace contains every entry the composer applied, in order.
	Trace []TraceEvent `json:"trace"`

	// Applied contains the definition names the recording composer ran.
	Applied []string `json:"applied"`

	// ErrorCode and Error describe a failed resolution.
	ErrorCode string   `json:"error_code,omitempty"`
	Error     string   `json:"error,omitempty"`
	Cycle     []string `json:"cycle,omitempty"`

	// ResolutionID and OrderingHash identify the persisted resolution.
	ResolutionID string `json:"resolution_id"`
	OrderingHash string `json:"ordering_hash,omitempty"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Order:   []string{},
		Trace:   []TraceEvent{},
		Applied: []string{},
		Errors:  []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace records an applied entry.
func (r *Result) AddTrace(position int, name, kind string) {
	r.Trace = append(r.Trace, TraceEvent{Position: position, Name: name, Kind: kind})
}
