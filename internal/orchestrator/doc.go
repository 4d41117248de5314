// Package orchestrator maps the build, rebuild, restore, test and run
// operations onto external tool invocations.
//
// Every tool runs with the repository root as its working directory, one at a
// time. The test and run operations first check that their artifact exists
// and, when it does not, run a build as a prerequisite. A failing
// prerequisite ends the operation with the build's exit code.
package orchestrator
