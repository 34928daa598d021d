// Package registry implements the in-memory instance registry: one
// provisioning record per user email, idempotent creation, bearer-token
// gated lookup, and time-based expiry.
//
// The registry exclusively owns all instance records. Creation stores
// a record in the provisioning state and triggers the external
// deployment in the background; the deployment outcome is written back
// only to the record's status field. Expired records are removed by a
// periodic sweep, and every read additionally filters them out so an
// expired instance is never returned between sweeps.
package registry

import (
	"context"
	"log/slog"
	"regexp"
	"sync"
	"time"

	"github.com/dispatch-mcp/swag-store-backend/api"
	"github.com/dispatch-mcp/swag-store-backend/cryptoutils"
	"github.com/dispatch-mcp/swag-store-backend/deploy"
	"github.com/dispatch-mcp/swag-store-backend/metrics"
)

// DefaultTTL is the instance lifetime from creation to expiry.
const DefaultTTL = 7 * 24 * time.Hour

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Config carries the registry dependencies. Zero-value TTL and Clock
// fall back to DefaultTTL and time.Now.
type Config struct {
	// Deployer provisions new instances in the background. A nil
	// deployer is replaced with deploy.NopDeployer.
	Deployer deploy.Deployer

	// Log is the structured logger for registry operations.
	Log *slog.Logger

	// TTL is the instance lifetime.
	TTL time.Duration

	// Clock supplies the current time; overridden in tests.
	Clock func() time.Time
}

// Registry is the keyed store of instance records.
type Registry struct {
	mu        sync.RWMutex
	instances map[string]*api.Instance

	deployer deploy.Deployer
	log      *slog.Logger
	ttl      time.Duration
	now      func() time.Time
}

// New creates an empty registry.
func New(cfg Config) *Registry {
	if cfg.Deployer == nil {
		cfg.Deployer = deploy.NopDeployer{}
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	return &Registry{
		instances: make(map[string]*api.Instance),
		deployer:  cfg.Deployer,
		log:       cfg.Log,
		ttl:       cfg.TTL,
		now:       cfg.Clock,
	}
}

// CreateResult is returned from CreateInstance.
type CreateResult struct {
	InstanceID string
	Token      string
	Existing   bool
}

// CreateInstance validates the email and either returns the already
// active instance for it, or stores a new provisioning record and
// triggers the external deployment without blocking.
func (r *Registry) CreateInstance(email string) (CreateResult, error) {
	if email == "" || !emailRe.MatchString(email) {
		return CreateResult{}, api.Validationf("invalid email address")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, inst := range r.instances {
		if inst.Email == email && inst.Status == api.StatusActive && !inst.Expired(now) {
			return CreateResult{InstanceID: inst.ID, Token: inst.Token, Existing: true}, nil
		}
	}

	id, err := cryptoutils.NewInstanceID()
	if err != nil {
		return CreateResult{}, err
	}
	token, err := cryptoutils.NewBearerToken()
	if err != nil {
		return CreateResult{}, err
	}
	apiKey, appKey, err := cryptoutils.NewCredentialPair()
	if err != nil {
		return CreateResult{}, err
	}

	inst := &api.Instance{
		ID:        id,
		Email:     email,
		Token:     token,
		APIKey:    apiKey,
		AppKey:    appKey,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
		Status:    api.StatusProvisioning,
	}
	r.instances[id] = inst

	go r.deployInstance(id, email, apiKey, appKey)

	return CreateResult{InstanceID: id, Token: token, Existing: false}, nil
}

// deployInstance runs the external deployment and writes the outcome
// back to the record's status field. The deployer enforces its own
// timeout.
func (r *Registry) deployInstance(id, email, apiKey, appKey string) {
	err := r.deployer.Deploy(context.Background(), id, email, apiKey, appKey)
	if err != nil {
		metrics.DeployFailures.Inc()
		r.log.Error("Instance deployment failed", "err", err, "instanceID", id, "email", email)
		r.setStatus(id, api.StatusFailed)
		return
	}

	r.log.Info("Instance deployed", "instanceID", id, "email", email)
	r.setStatus(id, api.StatusActive)
}

func (r *Registry) setStatus(id string, status api.InstanceStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// The record may have been swept while the deployment ran.
	if inst, ok := r.instances[id]; ok {
		inst.Status = status
	}
}

// GetInstance looks up an instance by id, checking the bearer token in
// constant time. Expired instances are reported as not found even if
// the sweep has not removed them yet.
func (r *Registry) GetInstance(id, bearerToken string) (*api.InstanceResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	inst, ok := r.instances[id]
	if !ok || inst.Expired(r.now()) {
		return nil, api.ErrNotFound
	}

	if !cryptoutils.TokenEqual(inst.Token, bearerToken) {
		return nil, api.ErrUnauthorized
	}

	return &api.InstanceResponse{
		InstanceID: inst.ID,
		Email:      inst.Email,
		Status:     inst.Status,
		CreatedAt:  inst.CreatedAt,
		ExpiresAt:  inst.ExpiresAt,
		MCPConfig:  api.NewMCPConfig(inst.APIKey, inst.AppKey),
	}, nil
}

// Instances returns a copy of all non-expired records.
func (r *Registry) Instances() []api.Instance {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	out := make([]api.Instance, 0, len(r.instances))
	for _, inst := range r.instances {
		if inst.Expired(now) {
			continue
		}
		out = append(out, *inst)
	}
	return out
}

// Len returns the number of non-expired records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.now()
	n := 0
	for _, inst := range r.instances {
		if !inst.Expired(now) {
			n++
		}
	}
	return n
}

// CleanupExpired removes all records whose expiry is strictly in the
// past and returns how many were removed.
func (r *Registry) CleanupExpired() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for id, inst := range r.instances {
		if inst.Expired(now) {
			delete(r.instances, id)
			removed++
			r.log.Info("Cleaned up expired instance", "instanceID", id, "email", inst.Email)
		}
	}
	if removed > 0 {
		metrics.ExpiredInstancesSwept.Add(float64(removed))
	}
	return removed
}

// RunSweeper runs CleanupExpired on the given interval until the
// context is cancelled. It is intended to run in its own goroutine.
func (r *Registry) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.CleanupExpired()
		case <-ctx.Done():
			return
		}
	}
}
