package runtime

import "github.com/Ayymoose/PC-Lint-GUI-sub000/types"

// Observer receives run output as it is produced.
//
// GroupReady is called on the pipeline consumer goroutine, in emission
// order. ProgressTick is called on the progress reader goroutine.
// RunComplete is called once, on the goroutine running Execute, after
// every GroupReady and ProgressTick call has returned.
// Implementations must not block for long; they stall the caller.
type Observer interface {
	GroupReady(envelope *types.GroupEnvelope)
	ProgressTick(completed int)
	RunComplete(result *RunResult)
}

// ObserverFuncs adapts optional functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnGroup    func(envelope *types.GroupEnvelope)
	OnProgress func(completed int)
	OnComplete func(result *RunResult)
}

// GroupReady calls OnGroup.
func (o ObserverFuncs) GroupReady(envelope *types.GroupEnvelope) {
	if o.OnGroup != nil {
		o.OnGroup(envelope)
	}
}

// ProgressTick calls OnProgress.
func (o ObserverFuncs) ProgressTick(completed int) {
	if o.OnProgress != nil {
		o.OnProgress(completed)
	}
}

// RunComplete calls OnComplete.
func (o ObserverFuncs) RunComplete(result *RunResult) {
	if o.OnComplete != nil {
		o.OnComplete(result)
	}
}

// NopObserver ignores everything.
var NopObserver Observer = ObserverFuncs{}

// MultiObserver fans each callback out to every observer in order.
type MultiObserver []Observer

// GroupReady forwards to every observer.
func (m MultiObserver) GroupReady(envelope *types.GroupEnvelope) {
	for _, o := range m {
		o.GroupReady(envelope)
	}
}

// ProgressTick forwards to every observer.
func (m MultiObserver) ProgressTick(completed int) {
	for _, o := range m {
		o.ProgressTick(completed)
	}
}

// RunComplete forwards to every observer.
func (m MultiObserver) RunComplete(result *RunResult) {
	for _, o := range m {
		o.RunComplete(result)
	}
}
