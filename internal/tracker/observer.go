package tracker

// Observer receives the outcome of each status check.
//
// Callbacks run on the tracker's polling goroutine. They must not call
// Start or Stop on the same tracker synchronously, except from OnComplete
// and OnFailed, which run after the cycle has already been released.
type Observer interface {
	OnProgress(p Progress)
	OnComplete(p Progress)
	OnFailed(jobID string, err error)
}

// Observers fans every callback out to each member in order.
type Observers []Observer

func (o Observers) OnProgress(p Progress) {
	for _, obs := range o {
		if obs != nil {
			obs.OnProgress(p)
		}
	}
}

func (o Observers) OnComplete(p Progress) {
	for _, obs := range o {
		if obs != nil {
			obs.OnComplete(p)
		}
	}
}

func (o Observers) OnFailed(jobID string, err error) {
	for _, obs := range o {
		if obs != nil {
			obs.OnFailed(jobID, err)
		}
	}
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	Progress func(Progress)
	Complete func(Progress)
	Failed   func(jobID string, err error)
}

func (f ObserverFuncs) OnProgress(p Progress) {
	if f.Progress != nil {
		f.Progress(p)
	}
}

func (f ObserverFuncs) OnComplete(p Progress) {
	if f.Complete != nil {
		f.Complete(p)
	}
}

func (f ObserverFuncs) OnFailed(jobID string, err error) {
	if f.Failed != nil {
		f.Failed(jobID, err)
	}
}
