// Package prompt holds the manual-mapping collaborators: a YAML review file
// workflow for unattended use and a line-oriented terminal dialog.
package prompt
