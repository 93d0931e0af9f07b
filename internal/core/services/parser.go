package services

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/imryche/litequery/internal/core/domain"
	"github.com/imryche/litequery/internal/logger"
)

// queryExt is the extension of query files read in directory mode.
const queryExt = ".sql"

var headerPattern = regexp.MustCompile(`(?m)^[ \t]*-- name:[ \t]*(.*?)[ \t]*\r?$`)

// ParseQueries reads every query from a file, or from every *.sql file of a
// directory in name order, and validates the complete list.
func ParseQueries(queriesPath string) ([]domain.Query, error) {
	info, err := os.Stat(queriesPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidSource, queriesPath, err)
	}

	switch {
	case info.IsDir():
		return parseFS(os.DirFS(queriesPath), ".", func(name string) string {
			return filepath.Join(queriesPath, filepath.FromSlash(name))
		})
	case info.Mode().IsRegular():
		dir, base := filepath.Split(queriesPath)
		if dir == "" {
			dir = "."
		}
		return parseFS(os.DirFS(dir), base, func(string) string { return queriesPath })
	default:
		return nil, fmt.Errorf("%w: %s is neither a file nor a directory", domain.ErrInvalidSource, queriesPath)
	}
}

// ParseQueriesFS is ParseQueries over a file system, for query files
// embedded with go:embed. root may name a file or a directory.
func ParseQueriesFS(fsys fs.FS, root string) ([]domain.Query, error) {
	return parseFS(fsys, root, func(name string) string { return name })
}

func parseFS(fsys fs.FS, root string, display func(string) string) ([]domain.Query, error) {
	info, err := fs.Stat(fsys, root)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrInvalidSource, display(root), err)
	}

	files := []string{root}
	if info.IsDir() {
		entries, err := fs.ReadDir(fsys, root)
		if err != nil {
			return nil, fmt.Errorf("reading queries directory: %w", err)
		}
		files = files[:0]
		// fs.ReadDir returns entries sorted by filename.
		for _, entry := range entries {
			if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), queryExt) {
				files = append(files, path.Join(root, entry.Name()))
			}
		}
	}

	var queries []domain.Query
	for _, name := range files {
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", display(name), err)
		}
		parsed, err := ParseQueryText(display(name), string(content))
		if err != nil {
			return nil, err
		}
		logger.Debug("parsed %d queries from %s", len(parsed), display(name))
		queries = append(queries, parsed...)
	}

	if err := domain.ValidateQueries(queries); err != nil {
		return nil, err
	}
	return queries, nil
}

// ParseQueryText extracts the annotated queries of one source text. It does
// not check names across sources; see domain.ValidateQueries.
func ParseQueryText(source, content string) ([]domain.Query, error) {
	headers := headerPattern.FindAllStringSubmatchIndex(content, -1)

	queries := make([]domain.Query, 0, len(headers))
	for i, h := range headers {
		token := content[h[2]:h[3]]

		name, op, err := domain.ParseQueryName(token)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}

		body := content[h[1]:]
		semi := strings.IndexByte(body, ';')
		// The statement must end before the next header starts.
		if semi < 0 || (i+1 < len(headers) && h[1]+semi > headers[i+1][0]) {
			return nil, fmt.Errorf("%s: %w: %q has no terminating semicolon", source, domain.ErrUnterminatedQuery, token)
		}
		sql := strings.TrimSpace(body[:semi+1])

		queries = append(queries, domain.Query{
			Name:   name,
			SQL:    sql,
			Args:   domain.ExtractParams(sql),
			Op:     op,
			Source: source,
		})
	}
	return queries, nil
}
