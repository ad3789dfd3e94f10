// Command admin manages the users of the password provider and issues JWTs
// for the token provider.
//
//	admin users add -email alice@example.com -password '...' -roles admin,user
//	admin users list
//	admin token -user alice -roles admin
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"zyan/auth"
	"zyan/repositories"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

type Config struct {
	BadgerFilepath    string        `env:"BADGER_FILEPATH"`
	JWTSecret         string        `env:"JWT_SECRET"`
	AuthTokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=24h"`
	LogLevel          string        `env:"LOG_LEVEL,default=ERROR"`
}

func main() {
	code, err := run(os.Args[1:], os.Stdout)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprint("admin: "+err.Error()))
	}
	os.Exit(code)
}

func run(args []string, out io.Writer) (int, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return exitConfig, fmt.Errorf(".env loading failed: %w", err)
	}
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if len(args) == 0 {
		return exitConfig, fmt.Errorf("usage: admin users add|list, admin token")
	}

	switch {
	case args[0] == "token":
		return issueToken(config, args[1:], out)
	case args[0] == "users" && len(args) > 1 && args[1] == "add":
		return withUsers(config, func(repo *repositories.UserRepository) (int, error) {
			return addUser(repo, args[2:], out)
		})
	case args[0] == "users" && len(args) > 1 && args[1] == "list":
		return withUsers(config, func(repo *repositories.UserRepository) (int, error) {
			return listUsers(repo, out)
		})
	default:
		return exitConfig, fmt.Errorf("unknown command %q", strings.Join(args, " "))
	}
}

func withUsers(config Config, fn func(repo *repositories.UserRepository) (int, error)) (int, error) {
	if config.BadgerFilepath == "" {
		return exitConfig, fmt.Errorf("BADGER_FILEPATH is required")
	}
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLogger(nil))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() { _ = db.Close() }()
	return fn(repositories.NewUserRepository(db, logs.GetLoggerFromString(config.LogLevel)))
}

func splitRoles(raw string) []string {
	return lo.Compact(lo.Map(strings.Split(raw, ","), func(r string, _ int) string {
		return strings.TrimSpace(r)
	}))
}

func addUser(repo repositories.IUserRepository, args []string, out io.Writer) (int, error) {
	fset := flag.NewFlagSet("users add", flag.ContinueOnError)
	email := fset.String("email", "", "user email")
	password := fset.String("password", "", "plain password, hashed with argon2id")
	roles := fset.String("roles", "user", "comma separated roles")
	if err := fset.Parse(args); err != nil {
		return exitConfig, err
	}

	register := auth.RegisterRequest{Email: *email, Password: *password, Roles: splitRoles(*roles)}
	if err := auth.ValidateRegister(register); err != nil {
		return exitConfig, err
	}
	hash, err := auth.HashPassword(register.Password)
	if err != nil {
		return exitRuntime, err
	}
	id, err := repo.CreateUser(register.Email, hash, register.Roles)
	if err != nil {
		return exitRuntime, err
	}
	_, _ = fmt.Fprintf(out, "%s %s (%s)\n", color.Green.Sprint("User created"), register.Email, id)
	return exitOK, nil
}

func listUsers(repo repositories.IUserRepository, out io.Writer) (int, error) {
	users, err := repo.ListUsers()
	if err != nil {
		return exitRuntime, err
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Email", "ID", "Roles", "Created"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetTablePadding("\t")
	for _, u := range users {
		displayID := u.ID
		if len(displayID) > 8 {
			displayID = displayID[:8]
		}
		table.Append([]string{u.Email, displayID, strings.Join(u.Roles, ","), u.CreatedAt.Format("2006-01-02 15:04:05")})
	}
	table.Render()
	return exitOK, nil
}

func issueToken(config Config, args []string, out io.Writer) (int, error) {
	fset := flag.NewFlagSet("token", flag.ContinueOnError)
	user := fset.String("user", "", "identity carried by the token")
	roles := fset.String("roles", "", "comma separated roles")
	if err := fset.Parse(args); err != nil {
		return exitConfig, err
	}
	if config.JWTSecret == "" {
		return exitConfig, fmt.Errorf("JWT_SECRET is required")
	}
	if *user == "" {
		return exitConfig, fmt.Errorf("-user is required")
	}
	token, err := auth.NewTokenIssuer(config.JWTSecret, config.AuthTokenDuration).GenerateToken(*user, splitRoles(*roles))
	if err != nil {
		return exitRuntime, err
	}
	_, _ = fmt.Fprintln(out, token)
	return exitOK, nil
}
