package cli

import (
	"context"
	"os"

	"github.com/dsmatveev/plaza/internal/common"
)

func (a *App) Register(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	username, err := GetSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Register(ctx, email, string(password), username)
	if !res.Success {
		printlnFn("Registration failed:", res.Error)
		return nil
	}
	printlnFn("Registered. You can log in now.")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	password, err := GetPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	res := a.session.Login(ctx, email, string(password))
	if !res.Success {
		printlnFn("Login failed:", res.Error)
		return nil
	}
	printlnFn("Logged in as", a.session.Username())
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.session.Logout()
	printlnFn("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	user := a.session.User()
	if user == nil {
		printlnFn("Not logged in.")
		return nil
	}
	printlnFn("User:", user.Email, "("+user.ID.String()+")")
	if profile := a.session.Profile(); profile != nil {
		printlnFn("Username:", profile.Username)
	}
	return nil
}

// Refresh is the manual recovery path: re-sync auth state and drop any
// latched fetch guards.
func (a *App) Refresh(ctx context.Context) error {
	a.session.ForceRefreshAuth(ctx)
	a.posts.ResetLoadingState()
	printlnFn("Refreshed.")
	return nil
}
