package server

import (
	"github.com/pulumi/pulumi-aws/sdk/v6/go/aws/ec2"
	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"

	"github.com/abnormalend/jitsi-infra/internal/jitsi"
)

// EC2 Instance Connect range for us-east-2.
const InstanceConnectCIDR = "3.16.146.0/29"

type Rule struct {
	Protocol    string
	Port        int
	CIDR        string
	Description string
}

// IngressRules lists the inbound rules in declaration order.
func IngressRules(cfg *jitsi.Config) []Rule {
	rules := []Rule{
		{"tcp", 443, "0.0.0.0/0", "Allow Jitsi from Anywhere"},
		{"tcp", 80, "0.0.0.0/0", "Allow Jitsi from Anywhere"},
		{"tcp", 4443, "0.0.0.0/0", "Allow Jitsi from Anywhere"},
		{"udp", 10000, "0.0.0.0/0", "Allow Jitsi from Anywhere"},
	}
	if cfg.LongLived {
		rules = append(rules, Rule{"tcp", 22, InstanceConnectCIDR, "Allow SSH From EC2 Instance Connect"})
	}
	return rules
}

func newSecurityGroup(ctx *pulumi.Context, resource, vpcID string, rules []Rule) (*ec2.SecurityGroup, error) {
	ingress := ec2.SecurityGroupIngressArray{}
	for _, r := range rules {
		ingress = append(ingress, &ec2.SecurityGroupIngressArgs{
			FromPort:    pulumi.Int(r.Port),
			ToPort:      pulumi.Int(r.Port),
			Protocol:    pulumi.String(r.Protocol),
			CidrBlocks:  pulumi.StringArray{pulumi.String(r.CIDR)},
			Description: pulumi.String(r.Description),
		})
	}
	return ec2.NewSecurityGroup(ctx, resource, &ec2.SecurityGroupArgs{
		Description: pulumi.String("Jitsi Security"),
		VpcId:       pulumi.String(vpcID),
		Ingress:     ingress,
		Egress: ec2.SecurityGroupEgressArray{
			&ec2.SecurityGroupEgressArgs{
				FromPort:       pulumi.Int(0),
				ToPort:         pulumi.Int(0),
				Protocol:       pulumi.String("-1"),
				CidrBlocks:     pulumi.StringArray{pulumi.String("0.0.0.0/0")},
				Ipv6CidrBlocks: pulumi.StringArray{pulumi.String("::/0")},
			},
		},
	})
}
