// Package deploy wraps the external deployment boundary for newly
// created instances. The actual provisioning is an opaque shell script
// that receives the instance id, email and credential pair; this
// package only invokes it with a bounded timeout and reports
// success or failure back to the registry.
package deploy

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"time"
)

// DefaultTimeout bounds a single deployment invocation so a hung
// script cannot leak indefinitely-pending work.
const DefaultTimeout = 60 * time.Second

// Deployer triggers external provisioning for an instance.
type Deployer interface {
	// Deploy provisions the instance identified by id. It blocks until
	// the deployment finishes or the context is done.
	Deploy(ctx context.Context, id, email, apiKey, appKey string) error
}

// ScriptDeployer invokes a shell script to provision instances.
type ScriptDeployer struct {
	script  string
	timeout time.Duration
	log     *slog.Logger
}

// NewScriptDeployer creates a deployer that runs the given script with
// the instance parameters as positional arguments.
func NewScriptDeployer(script string, log *slog.Logger) *ScriptDeployer {
	return &ScriptDeployer{
		script:  script,
		timeout: DefaultTimeout,
		log:     log,
	}
}

// Deploy runs the deployment script. The invocation is killed once the
// timeout elapses.
func (d *ScriptDeployer) Deploy(ctx context.Context, id, email, apiKey, appKey string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "bash", d.script, id, email, apiKey, appKey)
	out, err := cmd.CombinedOutput()
	if err != nil {
		d.log.Error("Deployment script failed", "err", err, "instanceID", id, "output", string(out))
		return fmt.Errorf("deployment script failed: %w", err)
	}

	d.log.Debug("Deployment script finished", "instanceID", id, "output", string(out))
	return nil
}

// NopDeployer succeeds immediately without side effects. It is used
// when no deployment script is configured, and in tests.
type NopDeployer struct{}

// Deploy reports immediate success.
func (NopDeployer) Deploy(ctx context.Context, id, email, apiKey, appKey string) error {
	return nil
}
