package main

import (
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/abnormalend/jitsi-infra/internal/jitsi"
	"github.com/abnormalend/jitsi-infra/server"
)

func main() {
	pulumi.Run(func(ctx *pulumi.Context) error {
		cfg, err := jitsi.Load()
		if err != nil {
			return err
		}
		return deploy(ctx, cfg)
	})
}

func deploy(ctx *pulumi.Context, cfg *jitsi.Config) error {
	account, err := jitsi.LookupAWS(ctx, cfg)
	if err != nil {
		return err
	}
	srv, err := server.New(ctx, "jitsi", &server.Config{
		AWS:      account,
		Settings: cfg,
	})
	if err != nil {
		return err
	}
	ctx.Export("instanceId", srv.Instance.ID())
	ctx.Export("publicIp", srv.Instance.PublicIp)
	if cfg.HasZone() {
		ctx.Export("url", pulumi.String("https://"+cfg.FQDN()))
	} else {
		ctx.Export("url", pulumi.Sprintf("https://%s", srv.Instance.PublicIp))
	}
	return nil
}
