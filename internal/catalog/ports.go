package catalog

import (
	"context"

	"bookshelf/internal/platform/googlebooks"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=catalog

// Provider is the external catalog service. *googlebooks.Client satisfies it.
type Provider interface {
	SearchVolumes(ctx context.Context, query string, maxResults int) (*googlebooks.VolumesResponse, error)
	GetVolume(ctx context.Context, id string) (*googlebooks.Volume, error)
}
