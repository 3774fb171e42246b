package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// promptForm collects the missing identity fields interactively.
// Existing values are pre-filled so the operator confirms rather than
// retypes.
func promptForm(ctx context.Context, id *Identity) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Full Name").
				Description("Used for commit attribution on every clone").
				Placeholder("Ada Lovelace").
				Value(&id.Name).
				Validate(validateName),
			huh.NewInput().
				Title("Work Email").
				Description("Your organization email address").
				Placeholder("ada@example.com").
				Value(&id.Email).
				Validate(validateEmail),
		).Title("Who are you?"),
	).RunWithContext(ctx)
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("not a valid email address")
	}
	return nil
}
