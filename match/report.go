package match

import (
	"sync"

	"github.com/casewise/ontolink/core"
	"github.com/google/uuid"
)

// Failure records one section that could not be processed during a run.
type Failure struct {
	SectionId core.ID
	Reason    string
}

// Report summarizes a batch run. A run succeeds partially: failures are
// recorded per section and never cancel sibling sections.
type Report struct {
	RunId     string
	Succeeded []core.ID
	Failed    []Failure

	mu sync.Mutex
}

func newReport() *Report {
	return &Report{RunId: uuid.NewString()}
}

func (r *Report) addSuccess(id core.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Succeeded = append(r.Succeeded, id)
}

func (r *Report) addFailure(id core.ID, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failed = append(r.Failed, Failure{SectionId: id, Reason: err.Error()})
}

// AllSucceeded reports whether every section in the run was processed.
func (r *Report) AllSucceeded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.Failed) == 0
}
