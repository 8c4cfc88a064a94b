package mpc

import (
	"fmt"
	"time"

	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/party"
	"github.com/dwallet-labs/dwallet-network-sub008/module/mpc/session"
)

// Job is one advance call of one session. The session is acquired when the
// job is built and released when its Result is applied.
type Job struct {
	session    *session.Session
	capability party.Capability
	request    party.AdvanceRequest
	attempt    session.Attempt
}

// Session returns the session the job advances.
func (j *Job) Session() *session.Session {
	return j.session
}

// Request returns the advance request of the job.
func (j *Job) Request() party.AdvanceRequest {
	return j.request
}

// Result is the outcome of running a Job.
type Result struct {
	job          *Job
	Outcome      party.Outcome
	PrivateState []byte
	Err          error
	Duration     time.Duration
}

// Run calls the bound capability. A panic inside the call is recovered and
// returned as an error wrapping ErrAdvancePanicked. Run is safe to call from
// any goroutine.
func (j *Job) Run() (res *Result) {
	start := time.Now()
	res = &Result{job: j}
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = party.Outcome{}
			res.PrivateState = nil
			res.Err = fmt.Errorf("%s round %d: %v: %w", j.request.Kind, j.request.Round, r, ErrAdvancePanicked)
		}
		res.Duration = time.Since(start)
	}()

	res.Outcome, res.PrivateState, res.Err = j.capability.Advance(j.request)
	return res
}
