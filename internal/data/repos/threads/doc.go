// Package threads holds the table repos for skill approval threads and their messages.
package threads
