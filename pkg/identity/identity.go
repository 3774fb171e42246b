// Package identity resolves the operator's name and organization
// email. The pair is read from the two global git configuration keys,
// prompted for at most once per machine when unset, persisted back,
// and cached for every subsequent clone in the run.
package identity

import (
	"context"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/installer"
	"github.com/devup-sh/devup/pkg/logging"
)

// Global git configuration keys holding the persisted identity.
const (
	KeyName  = "user.name"
	KeyEmail = "user.email"
)

// Identity is the operator's display name and organization email.
type Identity struct {
	Name  string
	Email string
}

// PromptFunc asks the operator to fill the missing identity fields.
// Swapped out in tests.
type PromptFunc func(ctx context.Context, id *Identity) error

// Resolver resolves and caches the identity for a run.
type Resolver struct {
	git    installer.Git
	prompt PromptFunc
	cached *Identity
}

// NewResolver creates a resolver with the interactive prompt.
func NewResolver(git installer.Git) *Resolver {
	return &Resolver{git: git, prompt: promptForm}
}

// NewResolverWithPrompt creates a resolver with a custom prompt,
// for tests and non-interactive callers.
func NewResolverWithPrompt(git installer.Git, prompt PromptFunc) *Resolver {
	return &Resolver{git: git, prompt: prompt}
}

// Resolve returns the cached identity, reading git config and
// prompting at most once. Inability to resolve after prompting is
// fatal.
func (r *Resolver) Resolve(ctx context.Context) (Identity, error) {
	if r.cached != nil {
		return *r.cached, nil
	}

	logger := logging.GetLogger("identity")

	name, err := r.git.ConfigGet(ctx, KeyName)
	if err != nil {
		return Identity{}, errors.Wrap(err, errors.ErrIdentity, "failed to read git identity")
	}
	email, err := r.git.ConfigGet(ctx, KeyEmail)
	if err != nil {
		return Identity{}, errors.Wrap(err, errors.ErrIdentity, "failed to read git identity")
	}

	id := Identity{Name: name, Email: email}

	if id.Name == "" || id.Email == "" {
		logger.Info().Msg("git identity not configured, prompting")
		if err := r.prompt(ctx, &id); err != nil {
			return Identity{}, errors.Wrap(err, errors.ErrIdentity, "identity prompt failed")
		}
		if id.Name == "" || id.Email == "" {
			return Identity{}, errors.New(errors.ErrIdentity,
				"name and email are required to attribute your work")
		}
		if err := r.git.ConfigSet(ctx, KeyName, id.Name); err != nil {
			return Identity{}, errors.Wrap(err, errors.ErrIdentity, "failed to persist git identity")
		}
		if err := r.git.ConfigSet(ctx, KeyEmail, id.Email); err != nil {
			return Identity{}, errors.Wrap(err, errors.ErrIdentity, "failed to persist git identity")
		}
	}

	logger.Debug().Str("name", id.Name).Str("email", id.Email).Msg("identity resolved")
	r.cached = &id
	return id, nil
}
