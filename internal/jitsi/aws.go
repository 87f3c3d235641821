package jitsi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/route53"
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ssm"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
)

// Canonical publishes the current focal image id under this parameter.
const UbuntuAMIParameter = "/aws/service/canonical/ubuntu/server/focal/stable/current/amd64/hvm/ebs-gp2/ami-id"

// AWS holds the pre-existing account resources the server is placed into.
type AWS struct {
	VpcID    string
	SubnetID string
	AMI      string
	Zone     *Zone
}

type Zone struct {
	ID   string
	Name string
}

// Domain returns the zone name without the trailing dot route53 reports.
func (z *Zone) Domain() string {
	return strings.TrimSuffix(z.Name, ".")
}

func LookupAWS(ctx *pulumi.Context, cfg *Config) (*AWS, error) {
	vpc, err := ec2.LookupVpc(ctx, &ec2.LookupVpcArgs{
		Default: pulumi.BoolRef(true),
	})
	if err != nil {
		return nil, fmt.Errorf("default vpc: %w", err)
	}
	subnets, err := ec2.GetSubnets(ctx, &ec2.GetSubnetsArgs{
		Filters: []ec2.GetSubnetsFilter{
			{Name: "vpc-id", Values: []string{vpc.Id}},
			{Name: "default-for-az", Values: []string{"true"}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("subnets of %s: %w", vpc.Id, err)
	}
	if len(subnets.Ids) == 0 {
		return nil, fmt.Errorf("default vpc %s has no default subnets", vpc.Id)
	}
	// pick the same subnet on every run
	ids := append([]string(nil), subnets.Ids...)
	sort.Strings(ids)

	ami, err := ssm.LookupParameter(ctx, &ssm.LookupParameterArgs{
		Name: UbuntuAMIParameter,
	})
	if err != nil {
		return nil, fmt.Errorf("ubuntu ami: %w", err)
	}
	a := &AWS{
		VpcID:    vpc.Id,
		SubnetID: ids[0],
		AMI:      ami.Value,
	}
	if cfg.HasZone() {
		a.Zone, err = lookupZone(ctx, cfg.ZoneName)
		if err != nil {
			return nil, err
		}
	}
	ctx.Log.Debug(fmt.Sprintf("using vpc %s subnet %s ami %s", a.VpcID, a.SubnetID, a.AMI), nil)
	return a, nil
}

func lookupZone(ctx *pulumi.Context, name string) (*Zone, error) {
	lookup, err := route53.LookupZone(ctx, &route53.LookupZoneArgs{Name: &name})
	if err != nil {
		return nil, fmt.Errorf("hosted zone %q: %w", name, err)
	}
	return &Zone{ID: lookup.ZoneId, Name: lookup.Name}, nil
}
