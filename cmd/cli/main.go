// Command phonebook is a CLI client for the phonebook service.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/phonebook/internal/api"
	"github.com/and161185/phonebook/internal/config"
	"github.com/and161185/phonebook/internal/contacts"
	"github.com/and161185/phonebook/internal/errs"
	"github.com/and161185/phonebook/internal/model"
	"github.com/and161185/phonebook/internal/session"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// app bundles everything a subcommand needs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	client   *api.Client
	sess     *session.Store
	contacts *contacts.Store
	jar      *api.PersistentJar
}

func usage() {
	fmt.Fprintf(os.Stderr, `phonebook CLI
Usage:
  phonebook [-url BASE_URL] [-v] <cmd> [args]

Commands:
  version
  register  -u <username> -e <email> -p <password>
  login     -e <email> -p <password>
  logout
  whoami
  list      [-page N] [-limit N] [-label L]
  search    -term <text> [-label L] [-page N] [-limit N]
  add       -name <name> -phone <10 digits> [-address A] [-label L] [-avatar file]
  edit      -id <24-hex id> -name <name> -phone <10 digits> [-address A] [-label L] [-avatar file]
  rm        -id <24-hex id>
  bookmark  -id <24-hex id>
  browse                                   (interactive list browser)

Labels: Work, School, Friends, Family (All = no filter)
`)
	os.Exit(2)
}

// main wires config, cookie jar and stores, then dispatches subcommands.
func main() {
	urlFlag := flag.String("url", "", "service base URL (overrides config)")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
	}
	cmd := flag.Arg(0)
	args := flag.Args()[1:]

	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if *urlFlag != "" {
		cfg.BaseURL = *urlFlag
	}
	if *verbose {
		cfg.Verbose = true
	}

	log := zap.NewNop()
	if cfg.Verbose {
		log, _ = zap.NewDevelopment()
	}
	defer func() { _ = log.Sync() }()

	jar, err := api.NewPersistentJar(config.CookiePath())
	if err != nil {
		fail(err)
	}
	client, err := api.New(cfg.BaseURL,
		api.WithHTTPClient(&http.Client{Timeout: cfg.Timeout, Jar: jar}),
		api.WithLogger(log),
		api.WithRateLimit(cfg.RequestsPerSecond, int(cfg.RequestsPerSecond)+1),
	)
	if err != nil {
		fail(err)
	}
	sess := session.New(client, log)
	a := &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		sess:     sess,
		contacts: contacts.New(client, sess, log),
		jar:      jar,
	}
	defer a.contacts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	switch cmd {
	case "version":
		fmt.Printf("phonebook %s (%s)\n", version, buildDate)
	case "register":
		a.cmdRegister(ctx, args)
	case "login":
		a.cmdLogin(ctx, args)
	case "logout":
		a.cmdLogout(ctx)
	case "whoami":
		a.cmdWhoami(ctx)
	case "list":
		a.cmdList(ctx, args)
	case "search":
		a.cmdSearch(ctx, args)
	case "add":
		a.cmdAdd(ctx, args)
	case "edit":
		a.cmdEdit(ctx, args)
	case "rm":
		a.cmdRemove(ctx, args)
	case "bookmark":
		a.cmdBookmark(ctx, args)
	case "browse":
		a.cmdBrowse(ctx)
	default:
		usage()
	}

	a.saveCookies()
}

// requireSession bootstraps the session and fails unless it resolved
// authenticated. This is the CLI analog of gating the UI on session state.
func (a *app) requireSession(ctx context.Context) {
	st := a.sess.Bootstrap(ctx)
	if !st.Authenticated {
		if st.LastError != "" {
			fmt.Fprintln(os.Stderr, st.LastError)
		}
		fail(errors.New("not signed in (run: phonebook login)"))
	}
}

// ---- auth commands ----

func (a *app) cmdRegister(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	u := fs.String("u", "", "username")
	e := fs.String("e", "", "email")
	p := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *u == "" || *e == "" || *p == "" {
		fmt.Fprintln(os.Stderr, "need -u, -e and -p")
		os.Exit(1)
	}
	if err := a.sess.SignUp(ctx, api.Profile{Username: *u, Email: *e, Password: *p}); err != nil {
		fail(err)
	}
	a.saveCookies()
	fmt.Println("ok")
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	e := fs.String("e", "", "email")
	p := fs.String("p", "", "password")
	_ = fs.Parse(args)
	if *e == "" || *p == "" {
		fmt.Fprintln(os.Stderr, "need -e and -p")
		os.Exit(1)
	}
	if err := a.sess.SignIn(ctx, api.Credentials{Email: *e, Password: *p}); err != nil {
		fail(err)
	}
	a.saveCookies()
	st := a.sess.Snapshot()
	fmt.Printf("signed in as %s\n", st.User.DisplayName())
}

func (a *app) cmdLogout(ctx context.Context) {
	// Local cleanup happens regardless of the server's answer.
	err := a.sess.SignOut(ctx)
	a.jar.Clear()
	if err != nil {
		fmt.Fprintf(os.Stderr, "server logout failed (%v); local session cleared\n", err)
		return
	}
	fmt.Println("signed out")
}

func (a *app) cmdWhoami(ctx context.Context) {
	a.requireSession(ctx)
	st := a.sess.Snapshot()
	out := map[string]any{
		"user":          st.User,
		"authenticated": st.Authenticated,
	}
	if exp, ok := a.client.SessionExpiry(); ok {
		out["token_expires_at"] = exp.UTC().Format(time.RFC3339)
	}
	printJSON(out)
}

// ---- contact commands ----

func (a *app) cmdList(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	page := fs.Int("page", 1, "page (1-based)")
	limit := fs.Int("limit", a.cfg.PageSize, "items per page")
	labelArg := fs.String("label", "", "label filter")
	_ = fs.Parse(args)

	label, err := model.ParseLabel(*labelArg)
	if err != nil {
		fail(err)
	}
	a.requireSession(ctx)

	a.contacts.SetQuery(model.QueryPatch{Limit: limit, Label: &label})
	a.contacts.SetQuery(model.QueryPatch{Page: page})
	if err := a.contacts.Fetch(ctx); err != nil {
		fail(err)
	}
	renderPage(os.Stdout, a.contacts.Snapshot())
}

func (a *app) cmdSearch(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	term := fs.String("term", "", "name to search for")
	labelArg := fs.String("label", "", "label filter")
	page := fs.Int("page", 1, "page (1-based)")
	limit := fs.Int("limit", a.cfg.PageSize, "items per page")
	_ = fs.Parse(args)
	if *term == "" {
		fmt.Fprintln(os.Stderr, "need -term")
		os.Exit(1)
	}

	label, err := model.ParseLabel(*labelArg)
	if err != nil {
		fail(err)
	}
	a.requireSession(ctx)

	a.contacts.SetQuery(model.QueryPatch{Limit: limit, SearchTerm: term, Label: &label})
	a.contacts.SetQuery(model.QueryPatch{Page: page})
	if err := a.contacts.Fetch(ctx); err != nil {
		fail(err)
	}
	renderPage(os.Stdout, a.contacts.Snapshot())
}

func (a *app) cmdAdd(ctx context.Context, args []string) {
	in, _, err := contactInputFlags("add", args, false)
	if err != nil {
		fail(err)
	}
	a.requireSession(ctx)
	created, err := a.contacts.Create(ctx, in)
	if err != nil {
		fail(err)
	}
	printJSON(created)
}

func (a *app) cmdEdit(ctx context.Context, args []string) {
	in, id, err := contactInputFlags("edit", args, true)
	if err != nil {
		fail(err)
	}
	a.requireSession(ctx)
	updated, err := a.contacts.Update(ctx, id, in)
	if err != nil {
		fail(err)
	}
	printJSON(updated)
}

func (a *app) cmdRemove(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("rm", flag.ExitOnError)
	id := fs.String("id", "", "contact id")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	a.requireSession(ctx)
	if err := a.contacts.Remove(ctx, *id); err != nil {
		fail(err)
	}
	fmt.Println("deleted", *id)
}

func (a *app) cmdBookmark(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("bookmark", flag.ExitOnError)
	id := fs.String("id", "", "contact id")
	_ = fs.Parse(args)
	if *id == "" {
		fmt.Fprintln(os.Stderr, "need -id")
		os.Exit(1)
	}
	a.requireSession(ctx)
	updated, err := a.contacts.ToggleBookmark(ctx, *id)
	if err != nil {
		fail(err)
	}
	fmt.Printf("%s bookmarked=%v\n", updated.Name, updated.Bookmarked)
}

// ---- helpers ----

func (a *app) saveCookies() {
	if err := a.jar.Save(); err != nil {
		a.log.Warn("failed to persist cookies", zap.Error(err))
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func fail(err error) {
	var ve *errs.ValidationError
	if errors.As(err, &ve) {
		fmt.Fprintf(os.Stderr, "invalid %s: %s\n", ve.Field, ve.Message)
		os.Exit(1)
	}
	if ae := errs.AsAPIError(err); ae != nil {
		fmt.Fprintf(os.Stderr, "server error (%d): %s\n", ae.Status, ae.Message)
		os.Exit(1)
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
