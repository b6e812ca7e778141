package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/zuno-wallet/zuno-go/internal/client/passkey"
	"github.com/zuno-wallet/zuno-go/internal/common"
)

// ensureVault creates the vault on first use (choosing a PIN) or unlocks an
// existing one.
func (a *App) ensureVault() error {
	if !a.vault.Initialized() {
		pin, err := GetPIN(os.Stdout, "Choose a device PIN")
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pin)
		return a.vault.Create(pin)
	}

	pin, err := GetPIN(os.Stdout, "Enter device PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)
	return a.vault.Unlock(pin)
}

// Register creates a new account with a fresh passkey.
func (a *App) Register(ctx context.Context) error {
	tag, err := GetSimpleText(a.reader, "Choose your zuno tag (e.g. @alice_1)", os.Stdout)
	if err != nil {
		return err
	}
	displayName, err := GetSimpleText(a.reader, "Display name (optional)", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.ensureVault(); err != nil {
		return err
	}

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	user, err := a.auth.Register(ctx, tag, displayName, "")
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTagAlreadyRegistered):
			return fmt.Errorf("@%s is taken, try another tag", tag)
		case errors.Is(err, passkey.ErrCancelled):
			return errors.New("registration cancelled")
		default:
			return err
		}
	}

	fmt.Printf("Welcome, @%s!\n", user.ZunoTag)
	a.startWatch(context.WithoutCancel(ctx))
	return nil
}

// Login runs a full passkey login.
func (a *App) Login(ctx context.Context) error {
	tag, err := GetSimpleText(a.reader, "Your zuno tag", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.ensureVault(); err != nil {
		return err
	}

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	user, err := a.auth.Login(ctx, tag)
	if err != nil {
		if errors.Is(err, passkey.ErrNotAvailable) {
			return errors.New("no passkey on this device for that account; register first")
		}
		return err
	}

	fmt.Printf("Welcome back, @%s!\n", user.ZunoTag)
	a.startWatch(context.WithoutCancel(ctx))
	return nil
}

// Unlock re-establishes the previous session with the device PIN, skipping
// the passkey ceremony.
func (a *App) Unlock(ctx context.Context) error {
	pin, err := GetPIN(os.Stdout, "Enter device PIN")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pin)

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	user, err := a.session.QuickUnlock(ctx, pin)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoStoredCredentials):
			return errors.New("no stored session on this device; use 'login'")
		case errors.Is(err, common.ErrTokenExpired):
			return errors.New("session expired; use 'login'")
		default:
			return err
		}
	}

	fmt.Printf("Welcome back, @%s!\n", user.ZunoTag)
	a.startWatch(context.WithoutCancel(ctx))
	return nil
}

// Logout drops the stored session and stops watching.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		return err
	}
	a.stopWatch()
	fmt.Println("Logged out.")
	return nil
}

// Profile shows the current user and optionally updates the display name.
func (a *App) Profile(ctx context.Context) error {
	if !a.isLoggedIn() {
		return common.ErrNotAuthenticated
	}

	ctx, cancel := shortTimeout(ctx)
	defer cancel()

	user, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("@%s  %s  currency=%s network=%s verified=%v\n",
		user.ZunoTag, user.DisplayName, user.DefaultCurrency, user.PreferredNetwork, user.IsVerified)
	return nil
}
