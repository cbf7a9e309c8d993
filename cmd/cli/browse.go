package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/and161185/phonebook/internal/contacts"
	"github.com/and161185/phonebook/internal/model"
)

// cmdBrowse is an interactive loop over the contacts store: typed search is
// debounced like a search box, discrete commands fetch immediately.
func (a *app) cmdBrowse(ctx context.Context) {
	a.requireSession(ctx)

	st := a.sess.Snapshot()
	fmt.Printf("signed in as %s. Type 'help' for commands.\n", st.User.DisplayName())

	a.contacts.SetQuery(model.QueryPatch{Limit: &a.cfg.PageSize})
	if err := a.contacts.Fetch(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	renderPage(os.Stdout, a.contacts.Snapshot())

	sc := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !sc.Scan() {
			return
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		switch cmd {
		case "help":
			fmt.Print(`commands:
  /<text>        incremental search (debounced; bare / clears it)
  label <L|All>  filter by label
  page <n>       go to page n
  next, prev     page through results
  rm <id>        delete contact
  mark <id>      toggle bookmark
  refresh        re-fetch the current view
  logout         sign out and quit
  quit
`)
		case "label":
			label, err := model.ParseLabel(arg)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			a.contacts.SetQuery(model.QueryPatch{Label: &label})
			a.fetchAndRender(ctx)
		case "page":
			n, err := strconv.Atoi(arg)
			if err != nil || n < 1 {
				fmt.Fprintln(os.Stderr, "page wants a positive number")
				continue
			}
			a.contacts.SetQuery(model.QueryPatch{Page: &n})
			a.fetchAndRender(ctx)
		case "next", "prev":
			snap := a.contacts.Snapshot()
			n := snap.Query.Page + 1
			if cmd == "prev" {
				n = snap.Query.Page - 1
			}
			if n < 1 || n > snap.TotalPages {
				fmt.Fprintln(os.Stderr, "no such page")
				continue
			}
			a.contacts.SetQuery(model.QueryPatch{Page: &n})
			a.fetchAndRender(ctx)
		case "rm":
			if err := a.contacts.Remove(ctx, arg); err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			renderPage(os.Stdout, a.contacts.Snapshot())
		case "mark":
			updated, err := a.contacts.ToggleBookmark(ctx, arg)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Printf("%s bookmarked=%v\n", updated.Name, updated.Bookmarked)
		case "refresh":
			a.fetchAndRender(ctx)
		case "logout":
			a.cmdLogout(ctx)
			return
		case "quit", "exit":
			return
		default:
			if term, ok := strings.CutPrefix(line, "/"); ok {
				a.contacts.SetSearchTerm(ctx, term)
				// Let the debounce window close before rendering what it fetched.
				time.Sleep(contacts.SearchDebounce + 100*time.Millisecond)
				renderPage(os.Stdout, a.contacts.Snapshot())
				continue
			}
			fmt.Fprintln(os.Stderr, "unknown command (try 'help')")
		}
	}
}

func (a *app) fetchAndRender(ctx context.Context) {
	if err := a.contacts.Fetch(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	renderPage(os.Stdout, a.contacts.Snapshot())
}
