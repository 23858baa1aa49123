package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/luoyiti/web-video-player/internal/catalog"
	"github.com/luoyiti/web-video-player/internal/formatter"
	"github.com/luoyiti/web-video-player/internal/models"
	"github.com/luoyiti/web-video-player/internal/shared"
)

// kindOf returns the --kind flag, or the current tab when it is not set.
func kindOf(cmd *cli.Command, view catalog.View) (models.Kind, error) {
	if !cmd.IsSet("kind") {
		return view.Tab(), nil
	}
	return models.ParseKind(cmd.String("kind"))
}

func parseID(name, raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not an integer", shared.ErrInvalidArgument, name, raw)
	}
	return id, nil
}

// listing builds the export for list and export: one kind, or the whole library.
func listing(state models.AppState, kind models.Kind, all bool, tag string) *formatter.Export {
	state.ActiveTag = tag
	filtered := catalog.NewView(state)

	if all {
		return &formatter.Export{Title: "Library", Tag: tag, Entries: filtered.Library()}
	}

	title := "Videos"
	if kind == models.KindPhoto {
		title = "Photos"
	}
	return formatter.NewExport(title, tag, kind, filtered.FilteredList(kind))
}

// CatalogList prints the items of one kind, filtered by tag.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}

	view := engine.View()
	kind, err := kindOf(cmd, view)
	if err != nil {
		return err
	}

	tag := view.ActiveTag()
	if cmd.IsSet("tag") {
		tag = strings.TrimSpace(cmd.String("tag"))
	}

	data, err := formatter.Render(format, listing(engine.State(), kind, cmd.Bool("all"), tag))
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if format == formatter.FormatText {
		r.writeStatus(engine)
	}
	return nil
}

// CatalogTags prints the distinct tags of one kind, or of everything.
func (r *Runner) CatalogTags(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}

	view := engine.View()
	var tags []string
	if cmd.Bool("all") {
		tags = view.AllTags()
	} else {
		kind, err := kindOf(cmd, view)
		if err != nil {
			return err
		}
		tags = view.TagsFor(kind)
	}

	for _, tag := range tags {
		marker := " "
		if tag == view.ActiveTag() {
			marker = "*"
		}
		r.writePlain("%s %s\n", marker, tag)
	}
	return nil
}

// CatalogAdd adds a video and, unless --no-persist is given, stores it on the backend.
func (r *Runner) CatalogAdd(ctx context.Context, cmd *cli.Command) error {
	src := strings.TrimSpace(cmd.StringArg("src"))
	if src == "" {
		return fmt.Errorf("%w: src", shared.ErrMissingArgument)
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}

	path := cmd.String("path")
	if path == "" {
		path = src
	}
	if cmd.Bool("no-persist") {
		path = ""
	}

	added := engine.AddLocalVideo(ctx, models.MediaItem{
		Title: cmd.String("title"),
		Src:   src,
		Tags:  shared.ParseTags(cmd.String("tags")),
	}, path)
	engine.Wait()

	current, ok := engine.View().CurrentVideo()
	if !ok {
		current = added
	}

	r.writePlain("✓ Added %s (id %d)\n", current.Title, current.ID)
	if current.BackendID > 0 {
		r.writePlain("  stored on backend as %d\n", current.BackendID)
	}
	r.writeStatus(engine)
	return nil
}

// CatalogTagAdd adds comma separated tags to an item.
func (r *Runner) CatalogTagAdd(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	tags := shared.ParseTags(cmd.StringArg("tags"))
	if len(tags) == 0 {
		return fmt.Errorf("%w: tags", shared.ErrMissingArgument)
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	kind, err := kindOf(cmd, engine.View())
	if err != nil {
		return err
	}

	if engine.State().IndexOf(kind, id) < 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}
	for _, tag := range tags {
		if err := engine.AddTag(ctx, kind, id, tag); err != nil {
			return err
		}
	}
	engine.Wait()

	return r.printTags(engine, kind, id)
}

// CatalogTagRemove removes the tag at a 1-based position.
func (r *Runner) CatalogTagRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}
	position, err := parseID("position", cmd.StringArg("position"))
	if err != nil {
		return err
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	kind, err := kindOf(cmd, engine.View())
	if err != nil {
		return err
	}

	if engine.State().IndexOf(kind, id) < 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}
	engine.RemoveTag(ctx, kind, id, int(position-1))
	engine.Wait()

	return r.printTags(engine, kind, id)
}

func (r *Runner) printTags(engine *catalog.Engine, kind models.Kind, id int64) error {
	state := engine.State()
	idx := state.IndexOf(kind, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}
	item := state.Items(kind)[idx]
	r.writePlain("%s: %s\n", item.Title, strings.Join(item.Tags, ", "))
	r.writeStatus(engine)
	return nil
}

// CatalogRemove removes an item locally without contacting the backend.
func (r *Runner) CatalogRemove(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	kind, err := kindOf(cmd, engine.View())
	if err != nil {
		return err
	}

	removed, ok := engine.RemoveItem(kind, id)
	if !ok {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}
	r.writePlain("✓ Removed %s\n", removed.Title)
	return nil
}

// CatalogDelete removes a video locally and deletes it on the backend.
func (r *Runner) CatalogDelete(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}

	if !engine.DeleteVideo(ctx, id) {
		return fmt.Errorf("%w: video %d", shared.ErrNotFound, id)
	}
	engine.Wait()

	r.writePlain("✓ Deleted video %d\n", id)
	r.writeStatus(engine)
	return nil
}

// CatalogSelect selects an item and switches to its tab.
func (r *Runner) CatalogSelect(ctx context.Context, cmd *cli.Command) error {
	id, err := parseID("id", cmd.StringArg("id"))
	if err != nil {
		return err
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}
	kind, err := kindOf(cmd, engine.View())
	if err != nil {
		return err
	}

	if engine.State().IndexOf(kind, id) < 0 {
		return fmt.Errorf("%w: %s %d", shared.ErrNotFound, kind, id)
	}
	engine.Select(kind, id)

	item, _ := engine.View().Current(kind)
	r.writePlain("▶ %s (%s)\n", item.Title, item.Src)
	return nil
}

// CatalogFilter sets or clears the tag filter.
func (r *Runner) CatalogFilter(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}

	engine.SetActiveTag(cmd.StringArg("tag"))
	view := engine.View()

	if view.ActiveTag() == "" {
		r.writePlain("Filter cleared\n")
		return nil
	}
	r.writePlain("Filter: #%s (%d %ss)\n", view.ActiveTag(), len(view.FilteredList(view.Tab())), view.Tab())
	return nil
}

// CatalogSync merges backend videos into the catalogue and reports the outcome.
func (r *Runner) CatalogSync(ctx context.Context, cmd *cli.Command) error {
	if r.backend() == nil {
		return fmt.Errorf("%w: client is configured offline", shared.ErrServiceUnavailable)
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}

	r.writeStatus(engine)
	if engine.Status().Level == catalog.LevelError {
		return fmt.Errorf("%w: %s", shared.ErrUnreachable, engine.Status().Message)
	}
	return nil
}

// CatalogExport writes the library, or one kind, to a file.
func (r *Runner) CatalogExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	engine, err := r.openCatalog(ctx)
	if err != nil {
		return err
	}

	view := engine.View()
	all := !cmd.IsSet("kind")
	kind := view.Tab()
	if !all {
		if kind, err = models.ParseKind(cmd.String("kind")); err != nil {
			return err
		}
	}

	export := listing(engine.State(), kind, all, view.ActiveTag())
	output := cmd.String("output")

	if cmd.Bool("compress") && (format == formatter.FormatCSV || format == formatter.FormatMarkdown) {
		return fmt.Errorf("%w: --compress does not apply to %s exports", shared.ErrInvalidFlag, format)
	}

	switch format {
	case formatter.FormatCSV:
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d items to %s and %s\n", len(export.Entries), result.ItemsFile, result.MetadataFile)
	case formatter.FormatMarkdown:
		path, err := formatter.WriteMarkdownExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d items to %s\n", len(export.Entries), path)
	default:
		write := formatter.WriteFile
		if cmd.Bool("compress") {
			write = formatter.WriteCompressedFile
		}
		path, err := write(format, export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d items to %s\n", len(export.Entries), path)
	}
	return nil
}
