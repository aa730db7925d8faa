// notefold is a read-only command line companion for the note store: it
// bootstraps the database, prints the folder tree and note lists, searches,
// shows statistics, and exports a note as HTML. Mutating flows belong to the
// presentation layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/notefold/notefold/internal/config"
	"github.com/notefold/notefold/internal/doc"
	"github.com/notefold/notefold/internal/errs"
	"github.com/notefold/notefold/internal/folders"
	"github.com/notefold/notefold/internal/notes"
	"github.com/notefold/notefold/internal/obs"
	"github.com/notefold/notefold/internal/search"
	"github.com/notefold/notefold/internal/stats"
	"github.com/notefold/notefold/internal/store"
)

const usage = `usage: notefold <command> [flags]

commands:
  folders              print the folder tree
  notes                list notes in a folder (-folder)
  search               search notes (-q, -title, -folder-name, -content, -tags)
  stats                per-type note counts and word totals
  print                render a note as HTML to stdout (-note, optional -folder)
`

type app struct {
	store   *store.SQLite
	codec   *doc.Markdown
	folders *folders.Service
	notes   *notes.Service
	search  *search.Service
}

func main() {
	obs.Init()

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "notefold: %v\n", err)
		os.Exit(1)
	}

	st, err := store.Open(cfg.DatabasePath(), cfg.DBKey)
	if err != nil {
		fmt.Fprintf(os.Stderr, "notefold: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	codec := doc.NewMarkdown()
	a := &app{
		store:   st,
		codec:   codec,
		folders: folders.NewService(st),
		notes:   notes.NewService(st, codec),
		search:  search.NewService(st),
	}

	ctx := context.Background()
	if _, err := a.folders.EnsureDefault(ctx, cfg.DefaultFolder); err != nil {
		fmt.Fprintf(os.Stderr, "notefold: %v\n", err)
		os.Exit(1)
	}

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "notefold: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "folders":
		return a.printFolders(ctx)
	case "notes":
		fs := flag.NewFlagSet("notes", flag.ExitOnError)
		folderName := fs.String("folder", "", "folder name")
		fs.Parse(args)
		return a.printNotes(ctx, *folderName)
	case "search":
		fs := flag.NewFlagSet("search", flag.ExitOnError)
		query := fs.String("q", "", "search text")
		var fields search.Fields
		fs.BoolVar(&fields.Title, "title", false, "match note titles")
		fs.BoolVar(&fields.FolderName, "folder-name", false, "match folder names")
		fs.BoolVar(&fields.Content, "content", false, "match note content")
		fs.BoolVar(&fields.Tags, "tags", false, "match tag names")
		fs.Parse(args)
		return a.printSearch(ctx, *query, fields)
	case "stats":
		return a.printStats(ctx)
	case "print":
		fs := flag.NewFlagSet("print", flag.ExitOnError)
		title := fs.String("note", "", "note title")
		folderName := fs.String("folder", "", "restrict to a folder name")
		fs.Parse(args)
		return a.printNoteHTML(ctx, *title, *folderName)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) printFolders(ctx context.Context) error {
	all, err := a.folders.List(ctx)
	if err != nil {
		return err
	}
	byParent := make(map[string][]store.Folder)
	for _, f := range all {
		byParent[f.ParentID] = append(byParent[f.ParentID], f)
	}

	var walk func(parentID string, depth int)
	walk = func(parentID string, depth int) {
		for _, f := range byParent[parentID] {
			fmt.Printf("%s%s\n", strings.Repeat("  ", depth), f.Name)
			walk(f.ID, depth+1)
		}
	}
	walk("", 0)
	return nil
}

func (a *app) printNotes(ctx context.Context, folderName string) error {
	folder, err := a.findFolderByName(ctx, folderName)
	if err != nil {
		return err
	}
	list, err := a.notes.ListInFolder(ctx, folder.ID)
	if err != nil {
		return err
	}
	for i := range list {
		n := &list[i]
		fmt.Printf("%-12s %-40s %s\n", n.Type.String(), n.Title, notes.Snippet(n, a.codec))
	}
	return nil
}

func (a *app) printSearch(ctx context.Context, query string, fields search.Fields) error {
	results, err := a.search.Search(ctx, query, fields)
	if errs.IsCode(err, errs.Unavailable) {
		// Search failures are non-fatal; report and show no results.
		fmt.Fprintf(os.Stderr, "search failed: %s\n", errs.MessageOf(err))
		return nil
	}
	if err != nil {
		return err
	}
	for i := range results {
		n := &results[i]
		fmt.Printf("%s  %-40s %s\n", n.UpdatedAt.Format("2006-01-02 15:04"), n.Title, notes.Snippet(n, a.codec))
	}
	return nil
}

func (a *app) printStats(ctx context.Context) error {
	summary, err := stats.Collect(ctx, a.store, a.codec)
	if err != nil {
		return err
	}
	for _, row := range summary.ByType {
		fmt.Printf("%-12s notes=%-5d words=%d\n", row.Type.String(), row.Count, row.Words)
	}
	return nil
}

func (a *app) printNoteHTML(ctx context.Context, title, folderName string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("print needs -note")
	}
	n, err := a.findNoteByTitle(ctx, title, folderName)
	if err != nil {
		return err
	}

	fmt.Printf("<!DOCTYPE html>\n<html>\n<head><meta charset=\"UTF-8\"><title>%s</title></head>\n<body>\n", html.EscapeString(n.Title))
	fmt.Printf("<h1>%s</h1>\n", html.EscapeString(n.Title))
	switch n.Type {
	case store.TypeChecklist:
		fmt.Println("<ul>")
		for _, item := range n.Items {
			check := "&#9744;"
			if item.Checked {
				check = "&#9745;"
			}
			fmt.Printf("<li>%s %s</li>\n", check, html.EscapeString(item.Text))
		}
		fmt.Println("</ul>")
	case store.TypeLongFormat:
		os.Stdout.Write(a.codec.HTML(n.Content))
		fmt.Println()
	default:
		fmt.Printf("<pre>%s</pre>\n", html.EscapeString(n.Content))
	}
	fmt.Println("</body>\n</html>")
	return nil
}

func (a *app) findFolderByName(ctx context.Context, name string) (*store.Folder, error) {
	all, err := a.folders.List(ctx)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" && len(all) > 0 {
		return &all[0], nil
	}
	for i := range all {
		if strings.EqualFold(all[i].Name, strings.TrimSpace(name)) {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("folder %q not found", name)
}

func (a *app) findNoteByTitle(ctx context.Context, title, folderName string) (*store.Note, error) {
	var candidates []store.Note
	if strings.TrimSpace(folderName) != "" {
		folder, err := a.findFolderByName(ctx, folderName)
		if err != nil {
			return nil, err
		}
		candidates, err = a.notes.ListInFolder(ctx, folder.ID)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		candidates, err = a.store.ListAllNotes(ctx)
		if err != nil {
			return nil, err
		}
	}
	for i := range candidates {
		if strings.EqualFold(strings.TrimSpace(candidates[i].Title), strings.TrimSpace(title)) {
			return &candidates[i], nil
		}
	}
	return nil, fmt.Errorf("note %q not found", title)
}
