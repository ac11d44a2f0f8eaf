// Package main hosts the reelsmith CLI.
//
// Each invocation loads the configuration, takes the state directory lock,
// restores the persisted project, runs one workflow action, and exits. The
// engine persists every change, so consecutive commands continue the same
// project. Video jobs poll only while a command is waiting on them.
package main
