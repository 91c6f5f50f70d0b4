package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ParseClusters decodes a classifier response: either a JSON array of clusters
// or an object holding them under "clusters". A markdown code fence around the JSON is tolerated.
func ParseClusters(data []byte) ([]Cluster, error) {
	data = trimFence(bytes.TrimSpace(data))
	if len(data) == 0 {
		return nil, errors.New("empty classifier response")
	}

	var clusters []Cluster
	if data[0] == '[' {
		if err := json.Unmarshal(data, &clusters); err != nil {
			return nil, errors.Wrap(err, "decoding clusters")
		}
	} else {
		var wrapped struct {
			Clusters *[]Cluster `json:"clusters"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, errors.Wrap(err, "decoding clusters")
		}
		if wrapped.Clusters == nil {
			return nil, errors.New(`classifier response has no "clusters"`)
		}
		clusters = *wrapped.Clusters
	}

	for i := range clusters {
		c := &clusters[i]
		if strings.TrimSpace(c.Title) == "" {
			return nil, fmt.Errorf("cluster %d has no title", i)
		}
		if c.StudentCount < 0 {
			return nil, fmt.Errorf("cluster %d has a negative studentCount", i)
		}
		if c.Examples == nil {
			c.Examples = []string{}
		}
		if c.ActionPlan.Quiz == nil {
			c.ActionPlan.Quiz = []QuizQuestion{}
		}
	}
	if clusters == nil {
		clusters = []Cluster{}
	}
	return clusters, nil
}

func trimFence(data []byte) []byte {
	if !bytes.HasPrefix(data, []byte("```")) {
		return data
	}
	data = bytes.TrimPrefix(data, []byte("```"))
	if nl := bytes.IndexByte(data, '\n'); nl >= 0 {
		data = data[nl+1:] // language tag
	}
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("```"))
	return bytes.TrimSpace(data)
}
