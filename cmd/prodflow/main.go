package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"text/tabwriter"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/pkg/errors"
	"github.com/prodflow/prodflow-go/api"
	"github.com/prodflow/prodflow-go/internal/config"
	"github.com/prodflow/prodflow-go/session"
	"github.com/prodflow/prodflow-go/session/store"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

const usage = `usage: prodflow <command> [flags]

commands:
  login      authenticate against the backend (-u user -t tenant)
  logout     clear the stored session
  whoami     show the current session identity
  company    select the working company (-id company)
  companies  list companies
  dashboard  show the production summary for the selected company
`

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "prodflow: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return errors.New("missing command")
	}

	cfg := config.New()
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	fileStore, err := store.NewFileStore(cfg.GetSessionFile())
	if err != nil {
		return errors.Wrap(err, "open session store")
	}

	sess := session.New(cfg.GetAPIBaseURL(), fileStore,
		session.WithHTTPClient(&http.Client{Timeout: cfg.GetHTTPTimeout()}),
		session.WithLogger(log),
	)
	client := api.New(cfg.GetAPIBaseURL(), sess, api.WithLogger(log))

	ctx := context.Background()

	switch args[0] {
	case "login":
		return loginCmd(ctx, cfg, sess, args[1:])
	case "logout":
		return sess.Logout()
	case "whoami":
		return whoamiCmd(sess)
	case "company":
		return companyCmd(sess, args[1:])
	case "companies":
		return companiesCmd(ctx, client)
	case "dashboard":
		return dashboardCmd(ctx, client)
	default:
		fmt.Fprint(os.Stderr, usage)
		return errors.Errorf("unknown command %q", args[0])
	}
}

func loginCmd(ctx context.Context, cfg config.Config, sess *session.Manager, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	tenantCode := fs.String("t", "", "tenant code")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *tenantCode == "" {
		return errors.New("login requires -u <username> and -t <tenant code>")
	}

	displayAppname(cfg.GetAppName())

	fmt.Fprint(os.Stdout, "Enter password: ")
	password, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return errors.Wrap(err, "read password")
	}

	if _, err := sess.Login(ctx, session.Credentials{
		Username:   *username,
		Password:   string(password),
		TenantCode: *tenantCode,
	}); err != nil {
		return err
	}

	user, _ := sess.User()
	fmt.Printf("Logged in as %s @ %s\n", user.Username, user.TenantCode)
	return nil
}

func whoamiCmd(sess *session.Manager) error {
	user, ok := sess.User()
	if !ok || !sess.IsAuthenticated() {
		return session.NotAuthenticatedErr
	}

	validation := sess.Validate()
	fmt.Printf("user:    %s (%s)\n", user.Username, user.ID)
	fmt.Printf("tenant:  %s (%s)\n", user.TenantCode, user.TenantID)
	fmt.Printf("roles:   %v\n", user.Roles)
	fmt.Printf("expires: in %s\n", time.Duration(validation.ExpiresIn)*time.Second)
	if companyID, ok := sess.SelectedCompany(); ok {
		fmt.Printf("company: %s\n", companyID)
	}
	return nil
}

func companyCmd(sess *session.Manager, args []string) error {
	fs := flag.NewFlagSet("company", flag.ExitOnError)
	id := fs.String("id", "", "company id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("company requires -id <company id>")
	}
	return sess.SelectCompany(*id)
}

func companiesCmd(ctx context.Context, client *api.Client) error {
	page, err := client.ListCompanies(ctx, 0, 100)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tACTIVE")
	for _, company := range page.Content {
		fmt.Fprintf(w, "%s\t%s\t%t\n", company.ID, company.CorporateName, company.IsActive)
	}
	return w.Flush()
}

func dashboardCmd(ctx context.Context, client *api.Client) error {
	summary, err := client.DashboardSummary(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("orders:       %d total, %d in progress, %d completed, %d pending\n",
		summary.TotalOrders, summary.OrdersInProgress, summary.OrdersCompleted, summary.OrdersPending)
	fmt.Printf("production:   %.2f total, %.2f this month\n", summary.TotalProduction, summary.MonthlyProduction)
	fmt.Printf("costs:        %.2f total, %.2f this month\n", summary.TotalCosts, summary.MonthlyCosts)
	fmt.Printf("stock:        %.2f value, %d items low\n", summary.TotalStockValue, summary.LowStockItems)
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
