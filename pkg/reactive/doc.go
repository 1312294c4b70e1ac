/*
Package reactive implements the typed property store that every stateful
graph entity is built on.

A Descriptor declares one named, typed property of an entity kind together
with its default-value factory. Descriptors are package-level values shared by
all instances of the kind and never change after definition.

A Store holds the current values of one entity. Values are sparse: reading a
property that was never written materializes the descriptor's default and
keeps it. Writing compares the old and new values; equal writes are dropped
silently, which is the only debounce the engine has. Unequal writes are stored
and then delivered synchronously to the subscribers of that descriptor, in
subscription order.

	var Title = reactive.Define("doc", "Title", func() string { return "" })

	s := reactive.NewStore(owner, logger)
	reactive.Subscribe(s, Title, func(c reactive.ChangeOf[string]) {
		fmt.Println(c.Old, "->", c.New)
	})
	reactive.Set(s, Title, "hello") // prints " -> hello"
	reactive.Set(s, Title, "hello") // no-op

Handlers may write to the same or other stores while being dispatched. The
subscriber list is snapshotted per dispatch, so subscribing or unsubscribing
from inside a handler affects only later writes.
*/
package reactive
