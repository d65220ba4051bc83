// Package pipeline runs a conversion end to end: load the source, analyze
// it, find a mapping (saved template, cached signature or fresh
// resolution), ask a person when confidence is low, pivot, merge into the
// destination, save, and remember the mapping.
//
// File access and prompting are collaborators behind the Loader, Saver and
// Prompter interfaces. A run is synchronous; Start only moves it onto a
// goroutine.
package pipeline
