package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/italolelis/baduk_downloader/internal/config"
	"github.com/manifoldco/promptui"
)

var errEmptyInput = errors.New("value must not be empty")

func notEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errEmptyInput
	}

	return nil
}

// credentials returns the configured email and password, asking on the
// terminal for whichever one is missing.
func credentials(cfg *config.Config) (string, string, error) {
	email := cfg.Email
	if email == "" {
		prompt := promptui.Prompt{
			Label:    "Email",
			Validate: notEmpty,
		}

		v, err := prompt.Run()
		if err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}

		email = strings.TrimSpace(v)
	}

	password := cfg.Password
	if password == "" {
		prompt := promptui.Prompt{
			Label:    "Password",
			Validate: notEmpty,
			Mask:     '*',
		}

		v, err := prompt.Run()
		if err != nil {
			return "", "", fmt.Errorf("failed to read password: %w", err)
		}

		password = v
	}

	return email, password, nil
}
