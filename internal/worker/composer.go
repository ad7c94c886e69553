// SPDX-License-Identifier: MPL-2.0

package worker

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jandreu1/azure-pipelines-agent/pkg/pipeline"
	"github.com/jandreu1/azure-pipelines-agent/pkg/platform"
)

// ErrMissingCollaborator is the sentinel error wrapped by
// MissingCollaboratorError.
var ErrMissingCollaborator = errors.New("missing composer collaborator")

type (
	// MissingCollaboratorError reports a nil required collaborator
	// handed to NewComposer. A nil here is a caller bug that would
	// otherwise surface as a panic deep inside a composition pass.
	MissingCollaboratorError struct {
		Field string
	}

	// VariableOptions controls what ComposeVariables emits.
	VariableOptions struct {
		// ExcludeNames drops both variable name lists
		// (VSTS_PUBLIC_VARIABLES and VSTS_SECRET_VARIABLES).
		ExcludeNames bool
		// ExcludeSecrets drops the secret partition entirely: no
		// SECRET_* keys and no secret name list, regardless of
		// ExcludeNames.
		ExcludeSecrets bool
	}

	// ComposerConfig carries one step's inputs into NewComposer.
	ComposerConfig struct {
		// Context supplies job variables, the prepend-path sequence,
		// and the warning sink. Required.
		Context *ExecutionContext
		// StepHost is the step's execution target. Required.
		StepHost StepHost
		// Environment is the mutable output mapping. The composer
		// writes into it and the invoker reads it back out; it is owned
		// by this one step. Required.
		Environment map[string]string
		// TaskVariables is the step's task-scope variable store.
		// Required; pass an empty store when the step declares none.
		TaskVariables *pipeline.VariableStore

		// Endpoints are the service connections visible to the step.
		Endpoints []pipeline.ServiceEndpoint
		// SecureFiles are the ticketed file references visible to the step.
		SecureFiles []pipeline.SecureFile
		// Inputs are the step's task-declared key/value pairs.
		Inputs map[string]string
	}

	// Composer projects one step's resources into its environment
	// mapping. Every write funnels through SetEnvironmentVariable, so
	// the oversize-value warning covers all composition operations.
	Composer struct {
		ctx      *ExecutionContext
		stepHost StepHost
		env      map[string]string

		endpoints     []pipeline.ServiceEndpoint
		secureFiles   []pipeline.SecureFile
		inputs        map[string]string
		taskVariables *pipeline.VariableStore

		// envValueLimit caps single values before a warning fires.
		// Zero disables the check. Tests override it to exercise the
		// warning path off Windows.
		envValueLimit int
	}
)

// Error implements the error interface.
func (e *MissingCollaboratorError) Error() string {
	return fmt.Sprintf("missing composer collaborator: %s", e.Field)
}

// Unwrap returns ErrMissingCollaborator so callers can use errors.Is
// for programmatic detection.
func (e *MissingCollaboratorError) Unwrap() error { return ErrMissingCollaborator }

// NewComposer validates the collaborator set and returns a composer for
// one step. Only collaborators whose nil value would panic on use are
// checked; nil slices and maps compose as empty collections.
func NewComposer(cfg ComposerConfig) (*Composer, error) {
	switch {
	case cfg.Context == nil:
		return nil, &MissingCollaboratorError{Field: "Context"}
	case cfg.StepHost == nil:
		return nil, &MissingCollaboratorError{Field: "StepHost"}
	case cfg.Environment == nil:
		return nil, &MissingCollaboratorError{Field: "Environment"}
	case cfg.TaskVariables == nil:
		return nil, &MissingCollaboratorError{Field: "TaskVariables"}
	}
	return &Composer{
		ctx:           cfg.Context,
		stepHost:      cfg.StepHost,
		env:           cfg.Environment,
		endpoints:     cfg.Endpoints,
		secureFiles:   cfg.SecureFiles,
		inputs:        cfg.Inputs,
		taskVariables: cfg.TaskVariables,
		envValueLimit: platform.EnvValueLimit(),
	}, nil
}

// Environment returns the mapping the composer writes into. Callers
// hand it to an invoker once composition is done.
func (c *Composer) Environment() map[string]string { return c.env }

// Compose runs the full composition sequence in delivery order:
// endpoints, secure files, inputs, variables, task variables, prepend
// path.
func (c *Composer) Compose(opts VariableOptions) {
	c.ComposeEndpoints()
	c.ComposeSecureFiles()
	c.ComposeInputs()
	c.ComposeVariables(opts)
	c.ComposeTaskVariables()
	c.ComposePrependPath()
}

// ComposeEndpoints publishes every endpoint that yields a partial key.
// Endpoints with no derivable key contribute nothing and are skipped
// without diagnostics. Running twice overwrites the same keys with the
// same values.
func (c *Composer) ComposeEndpoints() {
	for i := range c.endpoints {
		ep := &c.endpoints[i]
		partialKey, ok := ep.PartialKey()
		if !ok {
			continue
		}

		c.SetEnvironmentVariable(endpointURLPrefix+partialKey, ep.URL)

		var auth any
		if ep.Authorization != nil {
			auth = ep.Authorization
		}
		c.SetEnvironmentVariable(endpointAuthPrefix+partialKey, jsonOrEmpty(auth))

		if ep.Authorization != nil && ep.Authorization.Scheme != "" {
			c.SetEnvironmentVariable(endpointAuthSchemePrefix+partialKey, ep.Authorization.Scheme)
			for name, value := range ep.Authorization.Parameters {
				key := endpointAuthParameterPrefix + partialKey + "_" + FormatEnvironmentKey(name)
				c.SetEnvironmentVariable(key, value)
			}
		}

		// Per-entry data keys are reserved for endpoints with a real
		// id; legacy endpoints keyed by name or repository id expose
		// only their aggregate.
		if ep.ID == "" {
			continue
		}
		var data any
		if ep.Data != nil {
			data = ep.Data
		}
		c.SetEnvironmentVariable(endpointDataPrefix+partialKey, jsonOrEmpty(data))
		for name, value := range ep.Data {
			key := endpointDataPrefix + partialKey + "_" + FormatEnvironmentKey(name)
			c.SetEnvironmentVariable(key, value)
		}
	}
}

// ComposeSecureFiles publishes the name and ticket of every secure file
// reference that carries an id. The id namespaces the keys verbatim.
func (c *Composer) ComposeSecureFiles() {
	for i := range c.secureFiles {
		sf := &c.secureFiles[i]
		if !sf.Valid() {
			continue
		}
		c.SetEnvironmentVariable(secureFileNamePrefix+sf.ID, sf.Name)
		c.SetEnvironmentVariable(secureFileTicketPrefix+sf.ID, sf.Ticket)
	}
}

// ComposeInputs publishes the step's task inputs under INPUT_*.
func (c *Composer) ComposeInputs() {
	for name, value := range c.inputs {
		c.SetEnvironmentVariable(inputPrefix+FormatEnvironmentKey(name), value)
	}
}

// ComposeVariables publishes the job-scope variable store. Public
// values land under their formatted names; secret values land only
// under SECRET_*, never bare. The job status variable additionally
// keeps its literal spelling for consumers that predate the formatted
// scheme. The name lists carry raw names in sorted order.
func (c *Composer) ComposeVariables(opts VariableOptions) {
	vars := c.ctx.Variables()

	publicNames := vars.PublicNames()
	for _, name := range publicNames {
		value, _ := vars.Get(name)
		c.SetEnvironmentVariable(FormatEnvironmentKey(name), value)
		if strings.EqualFold(name, pipeline.JobStatusVariable) {
			c.SetEnvironmentVariable(name, value)
		}
	}
	if !opts.ExcludeNames {
		c.SetEnvironmentVariable(PublicVariableNamesKey, jsonOrEmpty(publicNames))
	}

	if opts.ExcludeSecrets {
		return
	}
	secretNames := vars.SecretNames()
	for _, name := range secretNames {
		value, _ := vars.Get(name)
		c.SetEnvironmentVariable(secretPrefix+FormatEnvironmentKey(name), value)
	}
	if !opts.ExcludeNames {
		c.SetEnvironmentVariable(SecretVariableNamesKey, jsonOrEmpty(secretNames))
	}
}

// ComposeTaskVariables publishes the step's task-scope variables under
// VSTS_TASKVARIABLE_*. Both partitions collapse into the one prefix
// with no secret marker.
func (c *Composer) ComposeTaskVariables() {
	for name, value := range c.taskVariables.Public() {
		c.SetEnvironmentVariable(taskVariablePrefix+FormatEnvironmentKey(name), value)
	}
	for name, value := range c.taskVariables.Secret() {
		c.SetEnvironmentVariable(taskVariablePrefix+FormatEnvironmentKey(name), value)
	}
}

// ComposePrependPath folds the queued prepend directories into PATH.
// Later-declared directories take precedence, so the sequence joins in
// reverse declaration order. A container target gets each directory
// translated into its namespace and the joined segment parked on the
// step host for in-container application; a host target gets a full
// PATH value written into the environment mapping, seeded from the
// first base found among the PATH job variable, an already-composed
// PATH entry, and the worker's own environment.
func (c *Composer) ComposePrependPath() {
	prependPath := c.ctx.PrependPath()
	if len(prependPath) == 0 {
		return
	}

	sep := platform.PathListSeparator()
	reversed := make([]string, len(prependPath))

	if containerHost, ok := c.stepHost.(*ContainerStepHost); ok {
		for i, dir := range prependPath {
			reversed[len(prependPath)-1-i] = containerHost.ResolvePath(dir)
		}
		containerHost.PrependPath = strings.Join(reversed, sep)
		return
	}

	for i, dir := range prependPath {
		reversed[len(prependPath)-1-i] = dir
	}
	prepend := strings.Join(reversed, sep)

	base := ""
	if v, ok := c.ctx.Variables().Get(PathKey); ok {
		base = v
	} else if v, ok := c.env[PathKey]; ok {
		base = v
	} else {
		base = os.Getenv(PathKey)
	}

	if base == "" {
		c.SetEnvironmentVariable(PathKey, prepend)
		return
	}
	c.SetEnvironmentVariable(PathKey, prepend+sep+base)
}

// SetEnvironmentVariable is the single write primitive behind every
// composition operation. The value always lands in full; exceeding the
// platform's per-value limit is reported as a warning, once per write,
// not an error.
func (c *Composer) SetEnvironmentVariable(key, value string) {
	if c.envValueLimit > 0 && len(value) > c.envValueLimit {
		c.ctx.Warning("environment variable %q exceeds the maximum supported length (length: %d, maximum: %d)",
			key, len(value), c.envValueLimit)
	}
	c.env[key] = value
}
