// Package prompt wraps promptui for the interactive bits of a login
// session: the ACVP TOTP seed and certificate passphrase, neither of
// which belong in a config file or a shell history.
package prompt

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

// ErrAborted is returned when the user aborts a prompt (Ctrl+C).
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err indicates the user aborted the prompt.
func IsAborted(err error) bool {
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) || errors.Is(err, ErrAborted)
}

func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if IsAborted(err) {
		return ErrAborted
	}
	return err
}

// TOTPSeed prompts for the base64 TOTP seed ACVP issues at account
// creation, masked like a password since it is effectively a shared
// secret.
func TOTPSeed() (string, error) {
	p := promptui.Prompt{
		Label: "ACVP TOTP seed (base64)",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return fmt.Errorf("seed is required")
			}
			return nil
		},
	}
	result, err := p.Run()
	return result, wrapError(err)
}

// ClientCertPassphrase prompts for the mTLS client key's passphrase,
// if it's encrypted. Returns "" with no error on an empty response.
func ClientCertPassphrase() (string, error) {
	p := promptui.Prompt{
		Label: "Client key passphrase (leave blank if unencrypted)",
		Mask:  '*',
	}
	result, err := p.Run()
	return result, wrapError(err)
}

// ConfirmResumeSession asks whether to resume a previously persisted
// session URL or start a new registration.
func ConfirmResumeSession(sessionURL string) (bool, error) {
	p := promptui.Prompt{
		Label:     fmt.Sprintf("Resume existing session %s? [y/N]", sessionURL),
		IsConfirm: true,
	}
	_, err := p.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, wrapError(err)
	}
	return true, nil
}
