package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Query reads documents of one table.
type Query struct {
	ix      *Index
	table   string
	orderBy string
}

// Query starts a query on a defined table.
func (ix *Index) Query(table string) *Query {
	return &Query{ix: ix, table: table}
}

// OrderBy orders results by a declared secondary index.
func (q *Query) OrderBy(key string) *Query {
	q.orderBy = key
	return q
}

// All returns every matching document. Without OrderBy, documents come back
// in insertion order.
func (q *Query) All(ctx context.Context) ([]Document, error) {
	q.ix.mu.Lock()
	def, ok := q.ix.tables[q.table]
	q.ix.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, q.table)
	}
	if q.orderBy != "" && !def.HasIndex(q.orderBy) {
		return nil, fmt.Errorf("%w: %s on %s", ErrUnknownIndex, q.orderBy, q.table)
	}

	var rows []documentRow
	err := q.ix.store.db.WithContext(ctx).
		Where("index_name = ? AND collection = ?", q.ix.name, q.table).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query %s.%s: %w", q.ix.name, q.table, err)
	}

	docs := make([]Document, 0, len(rows))
	for _, row := range rows {
		var fields map[string]any
		if err := json.Unmarshal([]byte(row.Body), &fields); err != nil {
			q.ix.logger.Warn("Skipping unreadable stored document", zap.String("path", row.Path), zap.Error(err))
			continue
		}
		docs = append(docs, Document{
			Table:   row.Collection,
			Source:  row.Source,
			Path:    row.Path,
			Version: row.Version,
			Fields:  fields,
		})
	}

	if q.orderBy != "" {
		fields := indexFields(q.orderBy)
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := docs[i].sortKey(fields), docs[j].sortKey(fields)
			for k := range a {
				if a[k] != b[k] {
					return a[k] < b[k]
				}
			}
			return false
		})
	}
	return docs, nil
}
