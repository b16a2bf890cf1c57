// Package fetch pulls raw observations from upstream providers and shapes
// them into table batches for the merge engine. Sources are isolated: the
// ingest runner treats each one's failure independently.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"cycle-radar/internal/domain"
)

// Source produces batches of rows bound to their target raw tables.
type Source interface {
	// Name identifies the source in logs and run reports.
	Name() string

	// Fetch returns zero or more table batches. Deduplication against
	// stored rows is the merge engine's job, not the source's; a source
	// only bounds how far back it reads.
	Fetch(ctx context.Context) ([]domain.TableBatch, error)
}

// getJSON performs a GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", url, err)
	}
	return nil
}
