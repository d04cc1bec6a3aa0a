// Package resource provides opaque handle tables.
//
// Values that cross a foreign boundary are never exposed by address. They are
// stored in a Table and referred to by a small integer Handle:
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	h := table.Insert(kindExecutable, exe)
//
//	// Kind-checked retrieval
//	v, ok := table.GetKind(h, kindExecutable)
//
//	// Release exactly once; a Dropper value is dropped here
//	table.Release(h)
//
// Typed wraps one kind of a shared table with a generic API.
//
// # Handle reuse
//
// Released slots are recycled. Using a handle after it has been released is
// a caller error: the handle is either invalid or names a newer value.
//
// # Observers
//
// Observers receive an Event for every insert and release:
//
//	table.Subscribe(resource.ObserverFunc(func(e resource.Event) {
//	    log.Printf("%s handle %d", e.Type, e.Handle)
//	}))
package resource
