package monitor

// Status represents the verdict of a check
type Status string

const (
	StatusUp   Status = "up"
	StatusDown Status = "down"
)

// Result represents the outcome of one check in one run
type Result struct {
	Name   string `json:"name"`
	Target string `json:"target"`
	Status Status `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Snapshot is every Result of one run, in configuration order
type Snapshot []Result

// Failed returns the down results, keeping their order
func (s Snapshot) Failed() Snapshot {
	var failed Snapshot
	for _, r := range s {
		if r.Status == StatusDown {
			failed = append(failed, r)
		}
	}
	return failed
}

// AnyDown reports whether at least one check is down
func (s Snapshot) AnyDown() bool {
	for _, r := range s {
		if r.Status == StatusDown {
			return true
		}
	}
	return false
}

// Names returns the check names in order
func (s Snapshot) Names() []string {
	names := make([]string, 0, len(s))
	for _, r := range s {
		names = append(names, r.Name)
	}
	return names
}
