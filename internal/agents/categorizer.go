package agents

import (
	"context"
	"fmt"

	"github.com/shubh-37/idea-processor/internal/models"
)

// ClusterIdeas groups similar ideas into broader concepts. Member ids the
// model invents are dropped; clusters left without members fail validation.
func (o *Orchestrator) ClusterIdeas(ctx context.Context, sessionContext string, ideas []models.Idea) ([]models.Cluster, error) {
	if len(ideas) == 0 {
		return nil, ErrNoIdeas
	}

	var clusters []models.Cluster
	req := jsonRequest(clusterPrompt(sessionContext, ideas), 0.3, 0)
	err := o.call(ctx, KindClusterIdeas, req, func(raw string) error {
		var resp clusterResponse
		if err := decodeJSON(raw, &resp); err != nil {
			return err
		}
		valid, err := validateClusters(resp.Clusters, ideas)
		if err != nil {
			return err
		}
		clusters = valid
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to cluster %d ideas: %w", len(ideas), err)
	}
	return clusters, nil
}
