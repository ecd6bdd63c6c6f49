// Package options contains the program options.
package options

// Flags contains behavior options shared by all commands.
type Flags struct {
	Debug bool // enable debug logging
	Quiet bool // only log errors
}

// Channels selects the channel assignment. The archive string takes precedence over the
// file, without either the default assignment is used.
type Channels struct {
	Archive string // 13 space separated channel numbers, -1 for unassigned roles
	File    string // YAML file mapping role names to channel numbers
}

// Decode contains the options of the decode command.
type Decode struct {
	Flags
	Channels

	Input      string  // transition CSV capture
	Output     string  // text export file, stdout if empty
	SampleRate float64 // sample rate for time based captures, in Hz
	Frames     bool    // write the frame table instead of the text export

	SQLite   bool   // store the results in a SQLite database
	Database string // database file, generated from the run id if empty

	Monitor     bool // serve the decode progress over HTTP
	MonitorPort int  // 0 selects a random port
}

// Simulate contains the options of the simulate command.
type Simulate struct {
	Flags
	Channels

	Script string // transaction script, one transaction per line
	Output string // transition CSV capture file

	Idle   uint64
	Setup  uint64
	Strobe uint64
	Hold   uint64
	Half   uint64
}
