// SPDX-License-Identifier: MPL-2.0

package pipeline

import "sort"

// JobStatusVariable is the job-level variable that tracks the running
// job's status. Consumers predate the environment-formatted naming
// scheme, so composition emits it under both its literal and formatted
// names.
const JobStatusVariable = "agent.jobstatus"

// VariableValue is the wire shape of one variable: its value plus the
// secrecy marker that decides which partition it lands in.
type VariableValue struct {
	Value    string `json:"value" yaml:"value"`
	IsSecret bool   `json:"isSecret,omitempty" yaml:"isSecret,omitempty"`
}

// VariableStore partitions a scope's variables into a public and a
// secret set. A name lives in exactly one partition; setting it again
// moves it to the partition of the latest call.
type VariableStore struct {
	public map[string]string
	secret map[string]string
}

// NewVariableStore returns an empty store.
func NewVariableStore() *VariableStore {
	return &VariableStore{
		public: make(map[string]string),
		secret: make(map[string]string),
	}
}

// NewVariableStoreFrom builds a store from wire-shaped values.
func NewVariableStoreFrom(values map[string]VariableValue) *VariableStore {
	s := NewVariableStore()
	for name, v := range values {
		if v.IsSecret {
			s.SetSecret(name, v.Value)
			continue
		}
		s.Set(name, v.Value)
	}
	return s
}

// Set stores a public variable, displacing any secret entry of the
// same name.
func (s *VariableStore) Set(name, value string) {
	delete(s.secret, name)
	s.public[name] = value
}

// SetSecret stores a secret variable, displacing any public entry of
// the same name.
func (s *VariableStore) SetSecret(name, value string) {
	delete(s.public, name)
	s.secret[name] = value
}

// Get returns the value of name from either partition.
func (s *VariableStore) Get(name string) (string, bool) {
	if v, ok := s.secret[name]; ok {
		return v, true
	}
	v, ok := s.public[name]
	return v, ok
}

// IsSecret reports whether name lives in the secret partition.
func (s *VariableStore) IsSecret(name string) bool {
	_, ok := s.secret[name]
	return ok
}

// Public returns a copy of the public partition.
func (s *VariableStore) Public() map[string]string {
	return copyMap(s.public)
}

// Secret returns a copy of the secret partition.
func (s *VariableStore) Secret() map[string]string {
	return copyMap(s.secret)
}

// PublicNames returns the public partition's names in sorted order.
func (s *VariableStore) PublicNames() []string {
	return sortedKeys(s.public)
}

// SecretNames returns the secret partition's names in sorted order.
func (s *VariableStore) SecretNames() []string {
	return sortedKeys(s.secret)
}

// Len returns the total number of variables across both partitions.
func (s *VariableStore) Len() int {
	return len(s.public) + len(s.secret)
}

func copyMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
