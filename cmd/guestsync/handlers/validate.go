package handlers

import (
	"context"
	"fmt"
	"log"
)

// Validate runs one stage of the lock vendor's installation MFA flow.
// With an empty code it requests a validation code; with a code it
// completes the validation. Either way the installation's session is
// refreshed first so the validation call is authorized.
func Validate(ctx context.Context, configPath, code string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	vendor, err := newLockVendor(cfg)
	if err != nil {
		return err
	}

	if _, err := vendor.Session(ctx); err != nil {
		return fmt.Errorf("lock vendor session failed: %w", err)
	}

	if err := vendor.Validate(ctx, code); err != nil {
		return err
	}

	if code == "" {
		log.Printf("Validation code requested; check %s and re-run with --code", cfg.August.Identifier)
	} else {
		log.Printf("Installation validated")
	}
	return nil
}
