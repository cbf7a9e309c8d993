package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/and161185/phonebook/internal/contacts"
	"github.com/and161185/phonebook/internal/model"
)

// formatPhone renders the numeric wire value back to its 10-digit form.
func formatPhone(n int64) string {
	return fmt.Sprintf("%010d", n)
}

// renderPage prints the current list state as an aligned table with a
// pagination footer.
func renderPage(w io.Writer, st contacts.State) {
	if len(st.Items) == 0 {
		fmt.Fprintln(w, "no contacts")
		return
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPHONE\tLABEL\tADDRESS\t★")
	for _, c := range st.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			c.ID, c.Name, formatPhone(c.PhoneNumber), c.Label, c.Address, bookmarkMark(c))
	}
	tw.Flush()

	fmt.Fprintf(w, "page %d/%d, %d contact(s)%s\n",
		st.Query.Page, st.TotalPages, st.TotalCount, describeQuery(st.Query))
}

func bookmarkMark(c model.Contact) string {
	if c.Bookmarked {
		return "*"
	}
	return ""
}

// describeQuery summarizes active filters for the footer.
func describeQuery(q model.Query) string {
	s := ""
	if q.SearchTerm != "" {
		s += fmt.Sprintf(", search %q", q.SearchTerm)
	}
	if q.Filtered() {
		s += fmt.Sprintf(", label %s", q.Label)
	}
	return s
}
