// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"encoding/json"
	"strings"
)

// Environment key prefixes produced by the composition operations. Task
// runtimes parse these back out of their process environment, so the
// exact spellings are a wire contract.
const (
	endpointURLPrefix           = "ENDPOINT_URL_"
	endpointAuthPrefix          = "ENDPOINT_AUTH_"
	endpointAuthSchemePrefix    = "ENDPOINT_AUTH_SCHEME_"
	endpointAuthParameterPrefix = "ENDPOINT_AUTH_PARAMETER_"
	endpointDataPrefix          = "ENDPOINT_DATA_"
	secureFileNamePrefix        = "SECUREFILE_NAME_"
	secureFileTicketPrefix      = "SECUREFILE_TICKET_"
	inputPrefix                 = "INPUT_"
	secretPrefix                = "SECRET_"
	taskVariablePrefix          = "VSTS_TASKVARIABLE_"
)

const (
	// PublicVariableNamesKey holds the JSON array of public variable
	// names, under their raw (unformatted) spellings.
	PublicVariableNamesKey = "VSTS_PUBLIC_VARIABLES"

	// SecretVariableNamesKey holds the JSON array of secret variable
	// names. Names only; the values stay under SECRET_*.
	SecretVariableNamesKey = "VSTS_SECRET_VARIABLES"

	// PathKey is the environment variable ComposePrependPath rewrites.
	PathKey = "PATH"
)

var envKeyReplacer = strings.NewReplacer(".", "_", " ", "_")

// FormatEnvironmentKey converts a raw variable, input, or parameter name
// into its environment spelling: '.' and ' ' become '_', then the whole
// name is uppercased. Every composition operation routes names through
// this one function. Endpoint partial keys and secure file ids are the
// exception: they namespace keys verbatim, dashes and casing intact.
func FormatEnvironmentKey(name string) string {
	return strings.ToUpper(envKeyReplacer.Replace(name))
}

// jsonOrEmpty renders v as compact JSON. A nil value or a marshal
// failure yields the empty string; composition never aborts over a
// serialization problem.
func jsonOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// EnvToSlice converts an environment map to the "KEY=value" slice shape
// exec.Cmd and the embedded interpreter consume.
func EnvToSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

// SensitiveKey reports whether a composed key carries credential
// material: secret variables, endpoint authorization payloads, and
// secure file tickets. Auth scheme names are metadata, not credentials.
func SensitiveKey(key string) bool {
	if strings.HasPrefix(key, endpointAuthSchemePrefix) {
		return false
	}
	return strings.HasPrefix(key, secretPrefix) ||
		strings.HasPrefix(key, endpointAuthPrefix) ||
		strings.HasPrefix(key, secureFileTicketPrefix)
}
