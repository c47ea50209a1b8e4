package flow

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
)

// Dep is the subscriber set of a single mutable channel.
// Membership is deduplicated by watcher identity, iteration follows
// insertion order so a cascade is deterministic within a run.
type Dep struct {
	members mapset.Set[*Watcher]
	order   []*Watcher
}

func newDep() *Dep {
	return &Dep{
		members: mapset.NewThreadUnsafeSet[*Watcher](),
	}
}

// Depend adds w, reporting whether it was not already subscribed.
func (d *Dep) Depend(w *Watcher) bool {
	if !d.members.Add(w) {
		return false
	}
	d.order = append(d.order, w)
	return true
}

func (d *Dep) Remove(w *Watcher) {
	if !d.members.Contains(w) {
		return
	}
	d.members.Remove(w)
	if i := slices.Index(d.order, w); i >= 0 {
		d.order = slices.Delete(d.order, i, i+1)
	}
}

func (d *Dep) Has(w *Watcher) bool {
	return d.members.Contains(w)
}

func (d *Dep) Len() int {
	return d.members.Cardinality()
}

// Watchers returns a copy of the current subscribers in notification order.
func (d *Dep) Watchers() []*Watcher {
	return slices.Clone(d.order)
}

// Notify re-runs every subscriber. Subscribers may resubscribe or unsubscribe
// while the cascade is in flight, so the set is snapshotted first. The first
// error aborts the remaining notifications.
func (d *Dep) Notify() error {
	for _, w := range d.Watchers() {
		if !d.members.Contains(w) {
			continue
		}
		if err := w.run(); err != nil {
			return err
		}
	}
	return nil
}
