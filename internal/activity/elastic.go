package activity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// ElasticRecorder indexes entries into Elasticsearch, one document per
// entry keyed by entry id.
type ElasticRecorder struct {
	transport esapi.Transport
	index     string
}

// NewElasticRecorder connects to the given cluster addresses
func NewElasticRecorder(addresses []string, index string) (*ElasticRecorder, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &ElasticRecorder{transport: client, index: index}, nil
}

func (r *ElasticRecorder) Record(ctx context.Context, entry Entry) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal activity: %w", err)
	}

	res, err := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: entry.ID.String(),
		Body:       bytes.NewReader(body),
	}.Do(ctx, r.transport)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("failed to record activity: %s: %s", res.Status(), bytes.TrimSpace(msg))
	}
	return nil
}
