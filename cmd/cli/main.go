package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/amirasaad/branchledger/infra/initializer"
	"github.com/amirasaad/branchledger/pkg/app"
	"github.com/amirasaad/branchledger/pkg/config"
	"github.com/amirasaad/branchledger/pkg/domain/ledger"
	"github.com/amirasaad/branchledger/pkg/domain/user"
	"github.com/amirasaad/branchledger/pkg/dto"
	"github.com/amirasaad/branchledger/pkg/seed"
	ledgersvc "github.com/amirasaad/branchledger/pkg/service/ledger"
	usersvc "github.com/amirasaad/branchledger/pkg/service/user"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  create-admin <username> [email]           create a super admin
  branches                                  list branches with their balances
  balance <branch_id>                       print the balance of a branch
  allocate <branch_id> <amount> [note]      allocate main branch funds to a sub branch
  seed <file>                               apply a YAML seed file`

var errUsage = errors.New("invalid arguments")

// operator acts for commands run from the terminal.
var operator = user.Principal{Role: user.RoleSuperAdmin}

var (
	okColor   = color.New(color.FgGreen)
	errColor  = color.New(color.FgRed, color.Bold)
	headColor = color.New(color.Bold)
)

type cli struct {
	app          *app.App
	out          io.Writer
	readPassword func(prompt string) (string, error)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		return
	}
	cfg, err := config.Load(".env")
	if err != nil {
		errColor.Fprintln(os.Stderr, "Failed to load configuration:", err) //nolint:errcheck
		os.Exit(1)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		errColor.Fprintln(os.Stderr, "Failed to initialize dependencies:", err) //nolint:errcheck
		os.Exit(1)
	}
	ctx := context.Background()
	a := app.New(deps, cfg)
	if err := a.Bootstrap(ctx); err != nil {
		errColor.Fprintln(os.Stderr, "Failed to bootstrap ledger:", err) //nolint:errcheck
		os.Exit(1)
	}

	c := &cli{app: a, out: os.Stdout, readPassword: terminalPassword}
	if err := c.run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Println(usage)
		}
		errColor.Fprintln(os.Stderr, "Error:", err) //nolint:errcheck
		os.Exit(1)
	}
}

func terminalPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "create-admin":
		return c.createAdmin(ctx, args[1:])
	case "branches":
		return c.branches(ctx)
	case "balance":
		return c.balance(ctx, args[1:])
	case "allocate":
		return c.allocate(ctx, args[1:])
	case "seed":
		return c.seed(ctx, args[1:])
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func (c *cli) createAdmin(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: create-admin needs a username", errUsage)
	}
	in := usersvc.CreateInput{Username: args[0]}
	if len(args) > 1 {
		in.Email = args[1]
	}
	var err error
	if in.Password, err = c.readPassword("Password: "); err != nil {
		return err
	}
	if in.ConfirmPassword, err = c.readPassword("Confirm password: "); err != nil {
		return err
	}
	u, err := c.app.UserService.CreateSuperAdmin(ctx, in)
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "Super admin %s created (id %s)\n", u.Username, u.ID) //nolint:errcheck
	return nil
}

func (c *cli) branches(ctx context.Context) error {
	list, err := c.app.BranchService.List(ctx, operator, dto.BranchFilter{})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	headColor.Fprintln(w, "ID\tNAME\tTYPE\tACTIVE\tBALANCE") //nolint:errcheck
	for _, b := range list {
		bal, err := c.app.LedgerService.GetBalance(ctx, operator, b.ID)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", b.ID, b.Name, b.Type, b.IsActive, formatAmount(bal))
	}
	return w.Flush()
}

func (c *cli) balance(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: balance needs a branch id", errUsage)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	bal, err := c.app.LedgerService.GetBalance(ctx, operator, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, formatAmount(bal))
	return nil
}

func (c *cli) allocate(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("%w: allocate needs a branch id and an amount", errUsage)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("%w: invalid amount %q", errUsage, args[1])
	}
	a, err := c.app.LedgerService.AllocateFunds(ctx, operator, ledgersvc.AllocateInput{
		ToBranchID:  id,
		Amount:      amount,
		Description: strings.Join(args[2:], " "),
	})
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "Allocated %s to %s (allocation %s)\n", //nolint:errcheck
		formatAmount(a.Amount), a.ToBranchID, a.ID)
	return nil
}

func (c *cli) seed(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: seed needs a file", errUsage)
	}
	f, err := seed.Load(args[0])
	if err != nil {
		return err
	}
	res, err := seed.Apply(ctx, f, c.app.BranchService, c.app.CategoryService, c.app.Deps.Logger)
	if err != nil {
		return err
	}
	okColor.Fprintf(c.out, "Seeded %d branches and %d categories\n", res.Branches, res.Categories) //nolint:errcheck
	return nil
}

func formatAmount(d decimal.Decimal) string {
	s := d.StringFixed(ledger.MaxFractionDigits)
	if d.IsNegative() {
		return errColor.Sprint(s)
	}
	return s
}
