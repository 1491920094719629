package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/benx421/bankmt/internal/models"
	"github.com/benx421/bankmt/internal/service"
)

const usage = `Commands:
  register <username> [password]   create an account and log in
  login <username> [password]      log in to an existing account
  logout                           end the session
  account                          show balance and account number
  deposit <amount> [description]   add money
  withdraw <amount> [description]  take money out
  history [-n count]               list transactions, newest first
  advice                           ask for financial advice
  help                             show this text
Run without a command to start an interactive shell.`

var errUnknownCommand = errors.New("unknown command")

// cli drives one client session from command-line arguments or a shell
type cli struct {
	session   *service.SessionManager
	processor service.TransactionApplier
	advisor   service.Advisor
	in        *bufio.Scanner
	out       io.Writer
}

func newCLI(session *service.SessionManager, processor service.TransactionApplier, advisor service.Advisor, in io.Reader, out io.Writer) *cli {
	return &cli{
		session:   session,
		processor: processor,
		advisor:   advisor,
		in:        bufio.NewScanner(in),
		out:       out,
	}
}

func (c *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return c.shell(ctx)
	}
	return c.execute(ctx, args)
}

func (c *cli) shell(ctx context.Context) error {
	if account := c.session.Current(); account != nil {
		fmt.Fprintf(c.out, "Logged in as %s.\n", account.Username)
	}

	for {
		fmt.Fprint(c.out, "bankmt> ")
		if !c.in.Scan() {
			fmt.Fprintln(c.out)
			return c.in.Err()
		}

		args := strings.Fields(c.in.Text())
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		if err := c.execute(ctx, args); err != nil {
			c.printError(err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (c *cli) execute(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "register":
		return c.authenticate(ctx, rest, c.session.Register, service.RegisteredMessage)
	case "login":
		return c.authenticate(ctx, rest, c.session.Login, service.LoginMessage)
	case "logout":
		c.session.Logout()
		fmt.Fprintln(c.out, service.LogoutMessage)
		return nil
	case "account", "balance":
		return c.account(ctx)
	case "deposit":
		return c.transact(ctx, models.TransactionTypeDeposit, rest)
	case "withdraw", "withdrawal":
		return c.transact(ctx, models.TransactionTypeWithdrawal, rest)
	case "history":
		return c.history(ctx, rest)
	case "advice":
		return c.advice(ctx)
	case "help", "-h", "--help":
		fmt.Fprintln(c.out, usage)
		return nil
	default:
		return fmt.Errorf("%w %q, try help", errUnknownCommand, cmd)
	}
}

func (c *cli) authenticate(
	ctx context.Context,
	args []string,
	auth func(ctx context.Context, username, secret string) (*models.Account, error),
	greet func(username string) string,
) error {
	if len(args) < 1 {
		return errors.New("a username is required")
	}

	username := args[0]
	secret := strings.Join(args[1:], " ")
	if secret == "" {
		var err error
		if secret, err = c.prompt("Password: "); err != nil {
			return err
		}
	}

	account, err := auth(ctx, username, secret)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, greet(account.Username))
	c.printAccount(account)
	return nil
}

func (c *cli) account(ctx context.Context) error {
	account, err := c.current(ctx)
	if err != nil {
		return err
	}
	c.printAccount(account)
	return nil
}

func (c *cli) transact(ctx context.Context, typ models.TransactionType, args []string) error {
	if len(args) < 1 {
		return errors.New("an amount is required")
	}

	amount, err := models.ParseAmount(strings.TrimPrefix(args[0], "$"))
	if err != nil {
		return &service.ServiceError{Code: service.ErrCodeInvalidAmount, Message: service.UserMessage(service.ErrCodeInvalidAmount), Err: err}
	}

	description := strings.Join(args[1:], " ")
	if description == "" {
		description = service.OnlineDescription(typ)
	}

	account, err := c.processor.Apply(ctx, c.session, service.TransactionRequest{
		Type:        typ,
		Amount:      amount,
		Description: description,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, service.TransactionMessage(typ, account.Transactions[0].AmountCents))
	fmt.Fprintf(c.out, "Balance: $%s\n", models.FormatCents(account.BalanceCents))
	return nil
}

func (c *cli) history(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(c.out)
	limit := fs.Int("n", 0, "show at most `count` transactions (0 for all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	account, err := c.current(ctx)
	if err != nil {
		return err
	}

	txns := account.Transactions
	if len(txns) == 0 {
		fmt.Fprintln(c.out, "No transactions yet.")
		return nil
	}
	if *limit > 0 && *limit < len(txns) {
		txns = txns[:*limit]
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "DATE\tTYPE\tAMOUNT\tDESCRIPTION\t")
	for _, t := range txns {
		sign := "+"
		if t.Type == models.TransactionTypeWithdrawal {
			sign = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s%s\t%s\t\n",
			t.CreatedAt.Local().Format("2006-01-02 15:04"),
			t.Type,
			sign, models.FormatCents(t.AmountCents),
			t.Description,
		)
	}
	return tw.Flush()
}

func (c *cli) advice(ctx context.Context) error {
	advice, err := c.advisor.Advise(ctx, c.session)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, advice)
	return nil
}

// current reloads the session account. When the ledger cannot be reached the
// cached copy is shown instead.
func (c *cli) current(ctx context.Context) (*models.Account, error) {
	account, err := c.session.Refresh(ctx)
	if err == nil {
		return account, nil
	}

	if service.CodeOf(err) == service.ErrCodePersistenceFailure {
		if cached := c.session.Current(); cached != nil {
			fmt.Fprintln(c.out, "(ledger unreachable, showing cached data)")
			return cached, nil
		}
	}
	return nil, err
}

func (c *cli) printAccount(a *models.Account) {
	fmt.Fprintf(c.out, "Username:       %s\n", a.Username)
	fmt.Fprintf(c.out, "Account number: %s\n", a.AccountNumber)
	fmt.Fprintf(c.out, "Balance:        $%s\n", models.FormatCents(a.BalanceCents))
}

func (c *cli) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *cli) printError(err error) {
	var svcErr *service.ServiceError
	if errors.As(err, &svcErr) {
		fmt.Fprintf(c.out, "Error: %s\n", svcErr.Message)
		return
	}
	fmt.Fprintf(c.out, "Error: %v\n", err)
}
