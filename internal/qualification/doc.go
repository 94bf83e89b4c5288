// Package qualification tags project releases and tracks qualification windows.
//
// A qualification window opens with a qualification-{timestamp} tag, stays open
// while release candidates are tagged, and closes when a final release is tagged,
// at which point every qualification tag is removed from the remote.
package qualification
