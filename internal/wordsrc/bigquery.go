package wordsrc

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"

	"github.com/hugolynch/crossroads/pkg/dict"
)

// BigQueryParams select the corpus rows to load. Table is the fully
// qualified `project.dataset.table` name with columns word (STRING),
// rating (INT64, NULLABLE) and scope (STRING).
type BigQueryParams struct {
	Project string
	Table   string
	Scope   string
}

// BigQuery loads one scoped word list from the shared corpus. NULL
// ratings become unranked entries.
func BigQuery(ctx context.Context, p BigQueryParams) (dict.List, error) {
	client, err := bigquery.NewClient(ctx, p.Project)
	if err != nil {
		return nil, fmt.Errorf("bigquery.NewClient: %w", err)
	}
	defer client.Close()

	q := client.Query(fmt.Sprintf("SELECT word, rating FROM `%s` WHERE scope = @scope", p.Table))
	q.Parameters = []bigquery.QueryParameter{{Name: "scope", Value: p.Scope}}

	job, err := q.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("q.Run: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("job.Wait: %w", err)
	}
	if err := status.Err(); err != nil {
		return nil, fmt.Errorf("status.Err: %w", err)
	}
	it, err := job.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("job.Read: %w", err)
	}

	var list dict.List
	for {
		var row []bigquery.Value
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("it.Next: %w", err)
		}

		text, ok := row[0].(string)
		if !ok {
			return nil, fmt.Errorf("row[0] is not a string: %v", row[0])
		}
		text = strings.ToUpper(text)
		if !dict.Valid(text) {
			continue
		}
		w := dict.Word{Text: text}
		if rating, ok := row[1].(int64); ok && rating >= 0 {
			w.Rating = int(rating)
			w.Rated = true
		}
		list = append(list, w)
	}
	return list, nil
}
