package client

import (
	"context"

	"github.com/darmiel/doipv/internal/api"
	"github.com/darmiel/doipv/internal/buildinfo"
	"github.com/darmiel/doipv/internal/core"
)

func (c *Client) Info(ctx context.Context) (*buildinfo.Info, string, error) {
	var info buildinfo.Info
	resp, err := c.get(ctx, c.url().
		setPath(api.AboutRoute).
		build(), &info)
	return &info, correlationFromResponse(resp), err
}

// Providers lists the service providers known to the server.
func (c *Client) Providers(ctx context.Context) ([]core.ServiceProviderInfo, error) {
	var res []core.ServiceProviderInfo
	_, err := c.get(ctx, c.url().
		setPath(api.ProvidersRoute).
		build(), &res)
	return res, err
}
