// SPDX-License-Identifier: MPL-2.0

package pipeline

// SecureFile is a named, ticketed reference to a secret file held by
// the orchestrator. The worker never sees the content; steps download
// it themselves using the ticket.
type SecureFile struct {
	// ID identifies the file and namespaces its environment keys.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Name is the human-chosen file name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// Ticket authorizes one download of the file's content.
	Ticket string `json:"ticket,omitempty" yaml:"ticket,omitempty"`
}

// Valid reports whether the reference can be materialized. Files
// without an id are skipped wholesale.
func (f *SecureFile) Valid() bool {
	return f.ID != ""
}
