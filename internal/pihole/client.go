package pihole

import "context"

// Client issues the sub-commands a restore needs.
type Client struct {
	runner Runner
}

// NewClient wraps runner.
func NewClient(runner Runner) *Client {
	return &Client{runner: runner}
}

// noReload is passed as the trailing argument of custom DNS/CNAME edits so
// the tool does not restart the resolver after every single change.
const noReload = "false"

// AddStaticDHCP adds a static lease. ip may be "noip" and hostname "nohost".
func (c *Client) AddStaticDHCP(ctx context.Context, mac, ip, hostname string) error {
	return c.runner.Run(ctx, "-a", "addstaticdhcp", mac, ip, hostname)
}

// AddCustomDNS adds a local A/AAAA record without reloading.
func (c *Client) AddCustomDNS(ctx context.Context, ip, domain string) error {
	return c.runner.Run(ctx, "-a", "addcustomdns", ip, domain, noReload)
}

// RemoveCustomDNS removes a local A/AAAA record without reloading.
func (c *Client) RemoveCustomDNS(ctx context.Context, ip, domain string) error {
	return c.runner.Run(ctx, "-a", "removecustomdns", ip, domain, noReload)
}

// AddCustomCNAME adds a local CNAME record without reloading.
func (c *Client) AddCustomCNAME(ctx context.Context, domain, target string) error {
	return c.runner.Run(ctx, "-a", "addcustomcname", domain, target, noReload)
}

// RemoveCustomCNAME removes a local CNAME record without reloading.
func (c *Client) RemoveCustomCNAME(ctx context.Context, domain, target string) error {
	return c.runner.Run(ctx, "-a", "removecustomcname", domain, target, noReload)
}

// RestartDNS asks the resolver to reload its configuration.
func (c *Client) RestartDNS(ctx context.Context) error {
	return c.runner.Run(ctx, "restartdns")
}
