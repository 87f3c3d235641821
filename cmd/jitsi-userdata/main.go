// Command jitsi-userdata prints what a deployment would hand to the server
// (boot script, inline IAM policies) using the same JITSI_* environment as
// the Pulumi program, without touching AWS.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v2"

	"github.com/abnormalend/jitsi-infra/internal/jitsi"
	"github.com/abnormalend/jitsi-infra/server"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "jitsi-userdata",
		Usage: "Preview the Jitsi server boot script and IAM policies",
		Commands: []*cli.Command{
			{
				Name:  "userdata",
				Usage: "Render the first boot script",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Write to this file instead of stdout",
					},
				},
				Action: userdata,
			},
			{
				Name:  "policy",
				Usage: "Render the inline policies a long-lived server receives",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "instance-arn",
						Usage:    "ARN of the server instance",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "zone-id",
						Usage: "Hosted zone id the server may update",
					},
				},
				Action: policy,
			},
		},
	}
}

func userdata(c *cli.Context) error {
	cfg, err := jitsi.Load()
	if err != nil {
		return err
	}
	script, err := server.RenderUserData(cfg)
	if err != nil {
		return err
	}
	out := c.String("out")
	if out == "" {
		_, err = fmt.Fprint(c.App.Writer, script)
		return err
	}
	if err := os.WriteFile(out, []byte(script), 0644); err != nil {
		return err
	}
	log.Info("wrote user data", "file", out, "fqdn", cfg.FQDN(), "longLived", bool(cfg.LongLived))
	return nil
}

func policy(c *cli.Context) error {
	cfg, err := jitsi.Load()
	if err != nil {
		return err
	}
	if !cfg.LongLived {
		log.Warn("JITSI_LONGLIVED is off, these policies would not be attached")
	}
	self, err := server.SelfAccessPolicy(c.String("instance-arn"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, self)
	zoneID := c.String("zone-id")
	if zoneID == "" {
		return nil
	}
	if !cfg.HasZone() {
		log.Warn("JITSI_ZONENAME is unset, the dns policy would not be attached")
	}
	dns, err := server.DNSUpdatePolicy(zoneID)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, dns)
	return nil
}
