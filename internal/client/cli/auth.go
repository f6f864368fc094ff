package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dmitrijs2005/gophaccounts/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// promptCredentials asks for an email and a password. The caller wipes
// the password.
func (a *App) promptCredentials() (string, []byte, error) {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return "", nil, err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return "", nil, err
	}
	return email, password, nil
}

// report prints a server message or logs the error.
func report(msg string, err error) error {
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	printlnFn(msg)
	return nil
}

// Register prompts for an email and password and creates an account.
// The password is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return report(a.authService.Register(ctx, email, password))
}

// Activate prompts for the emailed token.
func (a *App) Activate(ctx context.Context) error {
	token, err := getSimpleText(a.reader, "Enter activation token", os.Stdout)
	if err != nil {
		return err
	}
	return report(a.authService.Activate(ctx, token))
}

func (a *App) ResendActivation(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}
	return report(a.authService.ResendActivation(ctx, email))
}

// Login prompts for credentials and signs in. On success the session is
// cached locally so the next run starts signed in.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.promptCredentials()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		log.Printf("Login unsuccessful: %s", err.Error())
		return err
	}

	log.Printf("Login successful")
	a.userEmail = email
	a.setMode(ModeOnline)
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.authService.Refresh(ctx); err != nil {
		log.Printf("Refresh unsuccessful: %s", err.Error())
		return err
	}
	printlnFn("Access token refreshed.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	userID, err := a.authService.WhoAmI(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}
	printlnFn(fmt.Sprintf("%s (user id %s)", a.userEmail, userID))
	return nil
}

// Logout revokes the session on the server when reachable and always
// forgets it locally.
func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	a.userEmail = ""
	printlnFn(common.MsgLoggedOut)
	return nil
}
