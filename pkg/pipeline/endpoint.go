// SPDX-License-Identifier: MPL-2.0

package pipeline

import "strings"

const (
	// SystemConnectionName is the well-known name of the endpoint that
	// carries the job's own orchestrator connection.
	SystemConnectionName = "SystemVssConnection"

	// systemConnectionKey namespaces the system connection's
	// environment keys when it arrives without an id.
	systemConnectionKey = "SYSTEMVSSCONNECTION"

	// RepositoryDataKey is the reserved data entry that identifies a
	// repository-backed endpoint with no id of its own.
	RepositoryDataKey = "repositoryId"
)

// EndpointAuthorization is the credential material of a service
// endpoint: a scheme name plus scheme-specific parameters.
type EndpointAuthorization struct {
	// Scheme names the authorization kind ("OAuth", "UsernamePassword", ...).
	Scheme string `json:"scheme,omitempty" yaml:"scheme,omitempty"`
	// Parameters holds the scheme's key/value material (tokens,
	// usernames). Parameter keys keep their original casing here;
	// environment naming formats them on the way out.
	Parameters map[string]string `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// ServiceEndpoint is a service connection made available to the job's
// steps: a URL, authorization material, and an opaque data map.
type ServiceEndpoint struct {
	// ID is the connection's unique identifier. Legacy endpoints
	// addressed by well-known name or repository id arrive without one.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
	// Name is the human-chosen connection name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	// URL is the service location. Optional.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
	// Authorization carries the credential material. Optional.
	Authorization *EndpointAuthorization `json:"authorization,omitempty" yaml:"authorization,omitempty"`
	// Data is scheme- and service-specific extra state. Optional.
	Data map[string]string `json:"data,omitempty" yaml:"data,omitempty"`
}

// PartialKey derives the fragment that namespaces this endpoint's
// environment keys: the id when present, the fixed uppercase name for
// the system connection, else the repository id from the data map. The
// second return is false when none apply; such an endpoint contributes
// nothing to the environment.
func (e *ServiceEndpoint) PartialKey() (string, bool) {
	if e.ID != "" {
		return e.ID, true
	}
	if strings.EqualFold(e.Name, SystemConnectionName) {
		return systemConnectionKey, true
	}
	if repo, ok := e.Data[RepositoryDataKey]; ok && repo != "" {
		return repo, true
	}
	return "", false
}

// IsSystemConnection reports whether this endpoint is the job's
// orchestrator connection.
func (e *ServiceEndpoint) IsSystemConnection() bool {
	return strings.EqualFold(e.Name, SystemConnectionName)
}
