// Command adduser registers a user from the terminal, creating the credential
// and its empty financial profile exactly as signup does.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	authcmd "github.com/vasusumeet/Personal-Finance-App/auth-service/internal/command"
	"github.com/vasusumeet/Personal-Finance-App/auth-service/internal/repository"
	"github.com/vasusumeet/Personal-Finance-App/shared/apperr"
	"github.com/vasusumeet/Personal-Finance-App/shared/config"
	"github.com/vasusumeet/Personal-Finance-App/shared/cqrs"
	"github.com/vasusumeet/Personal-Finance-App/shared/database"
	"github.com/vasusumeet/Personal-Finance-App/shared/models"
)

type signupFunc func(ctx context.Context, cmd cqrs.SignupCommand) (*models.UserView, error)

// openSignup connects to the configured database. The returned close func
// releases the connection.
func openSignup(ctx context.Context) (signupFunc, func(), error) {
	cfg, err := config.Load("adduser", "8081")
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	if cfg.MigrateOnStart {
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, err
		}
	}
	// no publisher: the profile service reads through to Postgres on a cache miss
	svc := authcmd.NewAuthCommandService(repository.NewCredentialRepository(db), nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc.Signup, func() { db.Close() }, nil
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr, openSignup); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer,
	open func(context.Context) (signupFunc, func(), error)) error {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(stderr)

	username := fs.String("user", "", "Username")
	email := fs.String("email", "", "Email address")
	passwordFlag := fs.String("password", "", "Password (optional, will prompt if omitted)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	var missing []string
	if *username == "" {
		missing = append(missing, "user")
	}
	if *email == "" {
		missing = append(missing, "email")
	}
	if len(missing) > 0 {
		fmt.Fprintln(stdout, "Usage: adduser -user <username> -email <email> [-password <password>]")
		fs.PrintDefaults()
		return fmt.Errorf("missing required flags: %s", strings.Join(missing, ", "))
	}

	password := *passwordFlag
	if password == "" {
		fmt.Fprint(stdout, "Password: ")
		var err error
		password, err = readPassword(stdin)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		fmt.Fprintln(stdout)
	}

	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("password cannot be empty")
	}

	signup, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	user, err := signup(ctx, cqrs.SignupCommand{Username: *username, Email: *email, Password: password})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateCredential) {
			return fmt.Errorf("user %s already exists", *username)
		}
		return fmt.Errorf("failed to create user: %s", apperr.Message(err, err.Error()))
	}

	fmt.Fprintf(stdout, "User %s created successfully with ID %s\n", user.Username, user.ID)
	return nil
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		bytePassword, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(bytePassword), nil
	}

	// pipes and tests
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
