// Package listquery implements the generic read path behind every admin
// data table: free-text search over an allow-list of columns, validated
// sorting and offset pagination, with the data and count queries issued
// concurrently against the same filter.
package listquery

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const DefaultPerPage = 15

type Options struct {
	Page    int
	Search  string
	Sort    string
	Order   string // "asc" or "desc"
	PerPage int

	// SearchableColumns is the allow-list of columns matched against
	// Search. Names not present on the table are skipped silently.
	SearchableColumns []string

	// DefaultSort is used (descending) when Sort is absent or does not
	// name a real column.
	DefaultSort string

	// Preloads are applied to the data query only.
	Preloads []string
}

// ParseOptions reads page/search/sort/order from the request query string.
// An absent or unparseable page falls back to 1; order is restricted to
// exactly "asc" or "desc", defaulting to "desc".
func ParseOptions(c *fiber.Ctx) Options {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	order := c.Query("order", "desc")
	if order != "asc" && order != "desc" {
		order = "desc"
	}

	return Options{
		Page:    page,
		Search:  c.Query("search"),
		Sort:    c.Query("sort"),
		Order:   order,
		PerPage: DefaultPerPage,
	}
}

// Query runs the filtered, sorted, paginated read for T plus the matching
// total count. Both queries run concurrently; they share the filter but not
// a snapshot, so the pair may disagree under concurrent writes. Unknown
// sort or search columns degrade gracefully instead of erroring; the only
// errors surfaced come from the database itself.
func Query[T any](gdb *gorm.DB, opts Options) ([]T, int64, error) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PerPage <= 0 {
		opts.PerPage = DefaultPerPage
	}
	if opts.Order != "asc" && opts.Order != "desc" {
		opts.Order = "desc"
	}

	columns, err := tableColumns(gdb, new(T))
	if err != nil {
		return nil, 0, err
	}

	var searchable []string
	if opts.Search != "" {
		for _, col := range opts.SearchableColumns {
			if columns[col] {
				searchable = append(searchable, col)
			}
		}
	}

	// applyFilter rebuilds the OR chain per query so the two goroutines
	// never share a statement.
	applyFilter := func(tx *gorm.DB) *gorm.DB {
		if len(searchable) == 0 {
			return tx
		}
		term := "%" + opts.Search + "%"
		cond := tx.Session(&gorm.Session{NewDB: true}).Where(searchable[0]+" LIKE ?", term)
		for _, col := range searchable[1:] {
			cond = cond.Or(col + " LIKE ?", term)
		}
		return tx.Where(cond)
	}

	orderClause := ""
	if opts.Sort != "" && columns[opts.Sort] {
		orderClause = opts.Sort + " " + opts.Order
	} else if opts.DefaultSort != "" && columns[opts.DefaultSort] {
		orderClause = opts.DefaultSort + " desc"
	}

	var (
		rows     []T
		total    int64
		findErr  error
		countErr error
		wg       sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		q := applyFilter(gdb.Model(new(T)))
		for _, preload := range opts.Preloads {
			q = q.Preload(preload)
		}
		if orderClause != "" {
			q = q.Order(orderClause)
		}
		offset := (opts.Page - 1) * opts.PerPage
		findErr = q.Limit(opts.PerPage).Offset(offset).Find(&rows).Error
	}()
	go func() {
		defer wg.Done()
		countErr = applyFilter(gdb.Model(new(T))).Count(&total).Error
	}()
	wg.Wait()

	if findErr != nil {
		return nil, 0, findErr
	}
	if countErr != nil {
		return nil, 0, countErr
	}

	return rows, total, nil
}

// tableColumns returns the set of database column names for the model, from
// GORM's parsed schema rather than a round trip to the database.
func tableColumns(gdb *gorm.DB, model any) (map[string]bool, error) {
	stmt := &gorm.Statement{DB: gdb}
	if err := stmt.Parse(model); err != nil {
		return nil, err
	}

	columns := make(map[string]bool, len(stmt.Schema.DBNames))
	for _, name := range stmt.Schema.DBNames {
		columns[name] = true
	}
	return columns, nil
}
